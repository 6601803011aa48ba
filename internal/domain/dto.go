package domain

type CustomerTier string

const (
	TierStandard CustomerTier = "Standard"
	TierPremium  CustomerTier = "Premium"
)

type OrderStatusType string

const (
	// OrderStatusPending - заказ принят, ресурсы под него не зарезервированы.
	OrderStatusPending OrderStatusType = "PENDING"
	// OrderStatusApproved - приоритет заморожен, заказ ждет распределения.
	OrderStatusApproved OrderStatusType = "APPROVED"
	// Терминальные статусы. Обратных переходов из них нет.
	OrderStatusCompleted          OrderStatusType = "COMPLETED"
	OrderStatusBudgetInsufficient OrderStatusType = "BUDGET_INSUFFICIENT"
	OrderStatusStockInsufficient  OrderStatusType = "STOCK_INSUFFICIENT"
)

type LogType string

const (
	LogTypeOrderCreated       LogType = "ORDER_CREATED"
	LogTypeOrderUpdated       LogType = "ORDER_UPDATED"
	LogTypeOrderDeleted       LogType = "ORDER_DELETED"
	LogTypeOrderApproved      LogType = "ORDER_APPROVED"
	LogTypeOrderCompleted     LogType = "ORDER_COMPLETED"
	LogTypeBudgetInsufficient LogType = "BUDGET_INSUFFICIENT"
	LogTypeStockInsufficient  LogType = "STOCK_INSUFFICIENT"
	LogTypeValidationFailed   LogType = "VALIDATION_FAILED"
)
