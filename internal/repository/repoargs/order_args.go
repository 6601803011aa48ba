package repoargs

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
)

type OrderItemCreate struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

type OrderCreate struct {
	CustomerID int64
	Status     domain.OrderStatusType
	Items      []OrderItemCreate
}

// OrderApprovalUpdate фиксирует результат этапа подтверждения: статус, флаг
// подтверждения и замороженный скор приоритета.
type OrderApprovalUpdate struct {
	ID            int64
	Status        domain.OrderStatusType
	Approved      bool
	PriorityScore decimal.Decimal
}
