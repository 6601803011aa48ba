package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type CustomerRepository interface {
	Create(ctx context.Context, args repoargs.CustomerCreate) (*domain.Customer, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByName(ctx context.Context, name string) (*domain.Customer, error)
	GetAll(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, id int64, args repoargs.CustomerUpdate) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	ApplyCharge(ctx context.Context, id int64, amount decimal.Decimal) error
}

type ProductRepository interface {
	Create(ctx context.Context, args repoargs.ProductCreate) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id int64, args repoargs.ProductUpdate) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	DeductStock(ctx context.Context, id int64, quantity int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	GetAll(ctx context.Context) ([]domain.Order, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Order, error)
	GetPendingUnapproved(ctx context.Context) ([]domain.Order, error)
	GetApprovedSorted(ctx context.Context) ([]domain.Order, error)
	UpdateApproval(ctx context.Context, args repoargs.OrderApprovalUpdate) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) error
	ReplaceItems(ctx context.Context, orderID int64, items []repoargs.OrderItemCreate) ([]domain.OrderItem, error)
	Delete(ctx context.Context, id int64) error
}

type LogRepository interface {
	Create(ctx context.Context, args repoargs.LogCreate) (*domain.Log, error)
	GetByCustomerID(ctx context.Context, customerID int64, limit uint) ([]domain.Log, error)
	GetAll(ctx context.Context, limit uint) ([]domain.Log, error)
}

// TransitionValidator проверяет переход статуса заказа по таблице domain.Transitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current domain.OrderStatusType, event domain.OrderEvent) (domain.OrderStatusType, error)
}
