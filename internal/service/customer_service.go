package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type CustomerService struct {
	uow          uow.UOW
	gate         *AdmissionGate
	customerRepo CustomerRepository
}

func NewCustomerService(u uow.UOW, gate *AdmissionGate) (*CustomerService, error) {
	customerRepo, custRepoErr := uow.As[CustomerRepository](u, uow.RepositoryName(repoargs.CustomerRepoName))
	if custRepoErr != nil {
		return nil, custRepoErr //nolint:wrapcheck
	}
	return &CustomerService{
		uow:          u,
		gate:         gate,
		customerRepo: customerRepo,
	}, nil
}

type CustomerArgs struct {
	Name   string
	Tier   domain.CustomerTier
	Budget decimal.Decimal
}

func (s *CustomerService) Create(ctx context.Context, args CustomerArgs) (*domain.Customer, error) {
	if args.Budget.IsNegative() {
		return nil, domain.NewValidationError("customer budget must be non-negative")
	}

	release := s.gate.Acquire()
	defer release()

	customer, err := s.customerRepo.Create(ctx, repoargs.CustomerCreate{
		Name:       args.Name,
		Tier:       args.Tier,
		Budget:     args.Budget,
		TotalSpent: decimal.Zero,
	})
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return customer, nil
}

// CreateRandom создает клиента со случайным бюджетом в диапазоне, зависящем от
// уровня: Premium 2000-3000, Standard 500-2000. Используется для наполнения
// стенда тестовыми клиентами.
func (s *CustomerService) CreateRandom(ctx context.Context, name string, tier domain.CustomerTier) (*domain.Customer, error) {
	var budget int64
	if tier == domain.TierPremium {
		budget = 2000 + rand.Int63n(1001) //nolint:gosec
	} else {
		budget = 500 + rand.Int63n(1500) //nolint:gosec
	}

	return s.Create(ctx, CustomerArgs{
		Name:   name,
		Tier:   tier,
		Budget: decimal.NewFromInt(budget),
	})
}

func (s *CustomerService) Update(ctx context.Context, id int64, args CustomerArgs) (*domain.Customer, error) {
	if args.Budget.IsNegative() {
		return nil, domain.NewValidationError("customer budget must be non-negative")
	}

	release := s.gate.Acquire()
	defer release()

	customer, err := s.customerRepo.Update(ctx, id, repoargs.CustomerUpdate{
		Name:   args.Name,
		Tier:   args.Tier,
		Budget: args.Budget,
	})
	if err != nil {
		return nil, fmt.Errorf("updating customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	release := s.gate.Acquire()
	defer release()

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	return nil
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return customer, nil
}

func (s *CustomerService) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return customer, nil
}

func (s *CustomerService) GetAll(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customerRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return customers, nil
}

// CheckBudget проверяет, хватит ли текущего бюджета клиента на quantity единиц по
// цене unitPrice. Чистая проверка, ничего не списывает.
func (s *CustomerService) CheckBudget(
	ctx context.Context,
	customerID int64,
	quantity int64,
	unitPrice decimal.Decimal,
) (bool, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return false, err //nolint:wrapcheck
	}
	total := unitPrice.Mul(decimal.NewFromInt(quantity))
	return customer.Budget.GreaterThanOrEqual(total), nil
}
