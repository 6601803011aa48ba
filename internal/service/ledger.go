package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

// resourceLedger - единственный код, которому разрешено менять спорные поля общих
// ресурсов: бюджет и расходы клиента, остаток товара. Живет внутри одной
// uow-транзакции, так что списание ресурсов и запись статуса заказа коммитятся
// одним юнитом.
type resourceLedger struct {
	customers CustomerRepository
	products  ProductRepository
}

func ledgerFromTX(tx uow.TX) (*resourceLedger, error) {
	customers, custErr := uow.As[CustomerRepository](tx, uow.RepositoryName(repoargs.CustomerRepoName))
	if custErr != nil {
		return nil, custErr //nolint:wrapcheck
	}
	products, prodErr := uow.As[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if prodErr != nil {
		return nil, prodErr //nolint:wrapcheck
	}
	return &resourceLedger{customers: customers, products: products}, nil
}

func (l *resourceLedger) Customer(ctx context.Context, id int64) (*domain.Customer, error) {
	return l.customers.FindByID(ctx, id)
}

func (l *resourceLedger) Product(ctx context.Context, id int64) (*domain.Product, error) {
	return l.products.FindByID(ctx, id)
}

// ChargeCustomer списывает amount с бюджета клиента и прибавляет его к total_spent.
func (l *resourceLedger) ChargeCustomer(ctx context.Context, id int64, amount decimal.Decimal) error {
	return l.customers.ApplyCharge(ctx, id, amount)
}

// DeductStock уменьшает остаток товара на quantity.
func (l *resourceLedger) DeductStock(ctx context.Context, id int64, quantity int64) error {
	return l.products.DeductStock(ctx, id, quantity)
}
