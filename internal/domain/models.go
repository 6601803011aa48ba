package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Name       string
	Tier       CustomerTier
	Budget     decimal.Decimal
	TotalSpent decimal.Decimal
}

type Product struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Stock     int64
	Price     decimal.Decimal
}

type Order struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CustomerID int64
	Status     OrderStatusType
	Approved   bool
	// PriorityScore - замороженный скор приоритета. Записывается единожды на этапе
	// подтверждения заказа и более не пересчитывается.
	PriorityScore decimal.Decimal
	Items         []OrderItem
}

// TotalCost возвращает полную стоимость заказа по зафиксированным в позициях ценам.
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	// UnitPrice - цена за единицу, зафиксированная в момент создания заказа.
	// Живая цена продукта на этапе распределения не перечитывается.
	UnitPrice decimal.Decimal
}

func (i *OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Log - неизменяемая запись аудита. Записи только добавляются, никогда не
// редактируются и не удаляются.
type Log struct {
	ID         int64
	CreatedAt  time.Time
	CustomerID int64
	OrderID    *int64
	LogType    LogType
	Details    string
}
