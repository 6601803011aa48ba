package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

// OrderServicer интерфейс исключительно для моков.
type OrderServicer interface {
	Create(ctx context.Context, customerID int64, items []service.OrderItemArgs) (*domain.Order, error)
	Update(ctx context.Context, orderID int64, items []service.OrderItemArgs) (*domain.Order, error)
	Delete(ctx context.Context, orderID int64) error
	GetAll(ctx context.Context) ([]service.OrderView, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]service.OrderView, error)
	GetByID(ctx context.Context, orderID int64) (*service.OrderView, error)
}

type CustomerServicer interface {
	Create(ctx context.Context, args service.CustomerArgs) (*domain.Customer, error)
	CreateRandom(ctx context.Context, name string, tier domain.CustomerTier) (*domain.Customer, error)
	Update(ctx context.Context, id int64, args service.CustomerArgs) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	GetAll(ctx context.Context) ([]domain.Customer, error)
	CheckBudget(ctx context.Context, customerID int64, quantity int64, unitPrice decimal.Decimal) (bool, error)
}

type ProductServicer interface {
	Create(ctx context.Context, args service.ProductArgs) (*domain.Product, error)
	Update(ctx context.Context, id int64, args service.ProductArgs) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
}

type AuditServicer interface {
	GetByCustomerID(ctx context.Context, customerID int64, limit uint) ([]domain.Log, error)
	GetAll(ctx context.Context, limit uint) ([]domain.Log, error)
}

type DistributorServicer interface {
	ApproveAndDistribute(ctx context.Context) ([]service.DistributionOutcome, error)
}
