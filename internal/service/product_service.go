package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type ProductService struct {
	uow         uow.UOW
	gate        *AdmissionGate
	productRepo ProductRepository
}

func NewProductService(u uow.UOW, gate *AdmissionGate) (*ProductService, error) {
	productRepo, prodRepoErr := uow.As[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if prodRepoErr != nil {
		return nil, prodRepoErr //nolint:wrapcheck
	}
	return &ProductService{
		uow:         u,
		gate:        gate,
		productRepo: productRepo,
	}, nil
}

type ProductArgs struct {
	Name  string
	Stock int64
	Price decimal.Decimal
}

func (p *ProductArgs) validate() error {
	if p.Stock < 0 {
		return domain.NewValidationError("product stock must be non-negative")
	}
	if p.Price.IsNegative() {
		return domain.NewValidationError("product price must be non-negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, args ProductArgs) (*domain.Product, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	release := s.gate.Acquire()
	defer release()

	product, err := s.productRepo.Create(ctx, repoargs.ProductCreate{
		Name:  args.Name,
		Stock: args.Stock,
		Price: args.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, args ProductArgs) (*domain.Product, error) {
	if err := args.validate(); err != nil {
		return nil, err
	}

	release := s.gate.Acquire()
	defer release()

	product, err := s.productRepo.Update(ctx, id, repoargs.ProductUpdate{
		Name:  args.Name,
		Stock: args.Stock,
		Price: args.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	release := s.gate.Acquire()
	defer release()

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return product, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}
