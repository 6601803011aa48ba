package domain

import "fmt"

type OrderEvent string

const (
	EventApprove      OrderEvent = "approve"
	EventComplete     OrderEvent = "complete"
	EventRejectBudget OrderEvent = "reject_budget"
	EventRejectStock  OrderEvent = "reject_stock"
)

type Transition struct {
	Src   OrderStatusType
	Event OrderEvent
	Dst   OrderStatusType
}

// Transitions - закрытая таблица переходов статусов заказа. Любой переход,
// отсутствующий в таблице, отклоняется движком с ошибкой TransitionError.
var Transitions = []Transition{
	{Src: OrderStatusPending, Event: EventApprove, Dst: OrderStatusApproved},
	{Src: OrderStatusApproved, Event: EventComplete, Dst: OrderStatusCompleted},
	{Src: OrderStatusApproved, Event: EventRejectBudget, Dst: OrderStatusBudgetInsufficient},
	{Src: OrderStatusApproved, Event: EventRejectStock, Dst: OrderStatusStockInsufficient},
}

type TransitionError struct {
	Event   OrderEvent
	Current OrderStatusType
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not allowed from status %q", e.Event, e.Current)
}
