package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type OrderService struct {
	uow          uow.UOW
	gate         *AdmissionGate
	orderRepo    OrderRepository
	customerRepo CustomerRepository
	logRepo      LogRepository
	now          func() time.Time
}

func NewOrderService(u uow.UOW, gate *AdmissionGate) (*OrderService, error) {
	orderRepo, orderRepoErr := uow.As[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr //nolint:wrapcheck
	}
	customerRepo, custRepoErr := uow.As[CustomerRepository](u, uow.RepositoryName(repoargs.CustomerRepoName))
	if custRepoErr != nil {
		return nil, custRepoErr //nolint:wrapcheck
	}
	logRepo, logRepoErr := uow.As[LogRepository](u, uow.RepositoryName(repoargs.LogRepoName))
	if logRepoErr != nil {
		return nil, logRepoErr //nolint:wrapcheck
	}
	return &OrderService{
		uow:          u,
		gate:         gate,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		logRepo:      logRepo,
		now:          time.Now,
	}, nil
}

type OrderItemArgs struct {
	ProductID int64
	Quantity  int64
}

// Create создает заказ в статусе PENDING под шлюзом допуска.
//
// Алгоритм работы:
//  1. Проверяет существование клиента (domain.ErrRecordNotFound) и позиций:
//     непустой список, существующие товары, количество в пределах текущего
//     остатка (*domain.ValidationError).
//  2. Вставляет заказ с ценами, зафиксированными на момент создания, и запись
//     аудита - одной транзакцией.
//
// Остаток товара на этом этапе только проверяется, но не резервируется.
func (s *OrderService) Create(ctx context.Context, customerID int64, items []OrderItemArgs) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("order must contain at least one item")
	}

	release := s.gate.Acquire()
	defer release()

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, logRepo, repoErr := s.txRepos(tx)
		if repoErr != nil {
			return repoErr
		}
		ledger, ledgerErr := ledgerFromTX(tx)
		if ledgerErr != nil {
			return ledgerErr
		}

		if _, custErr := ledger.Customer(c, customerID); custErr != nil {
			return custErr
		}

		var createItems = make([]repoargs.OrderItemCreate, len(items))
		for i, item := range items {
			if item.Quantity <= 0 {
				return domain.NewValidationError("quantity for product %d must be positive", item.ProductID)
			}
			product, prodErr := ledger.Product(c, item.ProductID)
			if prodErr != nil {
				if errors.Is(prodErr, domain.ErrRecordNotFound) {
					return domain.NewValidationError("product %d does not exist", item.ProductID)
				}
				return prodErr
			}
			if product.Stock < item.Quantity {
				return domain.NewValidationError(
					"not enough stock for product %s: requested %d, available %d",
					product.Name, item.Quantity, product.Stock,
				)
			}
			createItems[i] = repoargs.OrderItemCreate{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			}
		}

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.OrderCreate{
			CustomerID: customerID,
			Status:     domain.OrderStatusPending,
			Items:      createItems,
		})
		if createErr != nil {
			return createErr
		}

		_, logErr := logRepo.Create(c, repoargs.LogCreate{
			CustomerID: customerID,
			OrderID:    &order.ID,
			LogType:    domain.LogTypeOrderCreated,
			Details:    fmt.Sprintf("order created: id=%d, customer=%d, total=%s", order.ID, customerID, order.TotalCost()),
		})
		return logErr
	})

	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}
	return order, nil
}

// Update заменяет набор позиций заказа целиком. Допускается только для заказов в
// статусе PENDING: после заморозки скора состав заказа неизменен. Для каждой
// позиции проверяется существование товара и достаточность бюджета клиента по
// текущей цене товара. Остаток и бюджет здесь не трогаются.
//
// Ошибки валидации фиксируются в аудите отдельной записью вне транзакции: сама
// мутация при этом не применяется, а след в журнале остается.
func (s *OrderService) Update(ctx context.Context, orderID int64, items []OrderItemArgs) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("order must contain at least one item")
	}

	release := s.gate.Acquire()
	defer release()

	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, logRepo, repoErr := s.txRepos(tx)
		if repoErr != nil {
			return repoErr
		}
		ledger, ledgerErr := ledgerFromTX(tx)
		if ledgerErr != nil {
			return ledgerErr
		}

		var findErr error
		order, findErr = orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr
		}
		if order.Status != domain.OrderStatusPending {
			return domain.NewValidationError("order %d is not pending and cannot be updated", orderID)
		}

		customer, custErr := ledger.Customer(c, order.CustomerID)
		if custErr != nil {
			return custErr
		}

		var createItems = make([]repoargs.OrderItemCreate, len(items))
		for i, item := range items {
			if item.Quantity <= 0 {
				return domain.NewValidationError("quantity for product %d must be positive", item.ProductID)
			}
			product, prodErr := ledger.Product(c, item.ProductID)
			if prodErr != nil {
				if errors.Is(prodErr, domain.ErrRecordNotFound) {
					s.auditFailure(ctx, order.CustomerID,
						fmt.Sprintf("order %d update rejected: product %d does not exist", orderID, item.ProductID))
					return domain.NewValidationError("product %d does not exist", item.ProductID)
				}
				return prodErr
			}

			cost := product.Price.Mul(decimal.NewFromInt(item.Quantity))
			if customer.Budget.LessThan(cost) {
				s.auditFailure(ctx, order.CustomerID,
					fmt.Sprintf("order %d update rejected: budget exceeded for product %d", orderID, item.ProductID))
				return domain.NewValidationError(
					"customer budget exceeded for product %s: cost %s, budget %s",
					product.Name, cost, customer.Budget,
				)
			}

			createItems[i] = repoargs.OrderItemCreate{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			}
		}

		newItems, replaceErr := orderRepo.ReplaceItems(c, orderID, createItems)
		if replaceErr != nil {
			return replaceErr
		}
		order.Items = newItems

		_, logErr := logRepo.Create(c, repoargs.LogCreate{
			CustomerID: order.CustomerID,
			OrderID:    &order.ID,
			LogType:    domain.LogTypeOrderUpdated,
			Details:    fmt.Sprintf("order updated: id=%d, customer=%d, total=%s", order.ID, order.CustomerID, order.TotalCost()),
		})
		return logErr
	})

	if txErr != nil {
		return nil, fmt.Errorf("updating order %d: %w", orderID, txErr)
	}
	return order, nil
}

// Delete удаляет заказ вместе с позициями. Запись аудита вставляется до удаления:
// ссылка на заказ в журнале обнуляется каскадом, детали остаются.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	release := s.gate.Acquire()
	defer release()

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, logRepo, repoErr := s.txRepos(tx)
		if repoErr != nil {
			return repoErr
		}

		order, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr
		}

		if _, logErr := logRepo.Create(c, repoargs.LogCreate{
			CustomerID: order.CustomerID,
			OrderID:    &order.ID,
			LogType:    domain.LogTypeOrderDeleted,
			Details: fmt.Sprintf(
				"order deleted: id=%d, customer=%d, status=%s", order.ID, order.CustomerID, order.Status),
		}); logErr != nil {
			return logErr
		}

		return orderRepo.Delete(c, orderID)
	})

	if txErr != nil {
		return fmt.Errorf("deleting order %d: %w", orderID, txErr)
	}
	return nil
}

// OrderView - заказ плюс живая оценка приоритета для еще не подтвержденных
// заказов. Оценка считается на чтении и никогда не сохраняется: замороженный
// PriorityScore пишет только этап подтверждения.
type OrderView struct {
	domain.Order
	LiveScoreEstimate decimal.Decimal
}

// GetAll возвращает все заказы. Шлюз не берется: читатель может увидеть состояние
// посреди пачки распределения, UI перечитывает список.
func (s *OrderService) GetAll(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return s.buildViews(ctx, orders)
}

// GetByCustomerID возвращает заказы клиента, отсортированные по дате создания по убыванию.
func (s *OrderService) GetByCustomerID(ctx context.Context, customerID int64) ([]OrderView, error) {
	orders, err := s.orderRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return s.buildViews(ctx, orders)
}

func (s *OrderService) GetByID(ctx context.Context, orderID int64) (*OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	views, viewErr := s.buildViews(ctx, []domain.Order{*order})
	if viewErr != nil {
		return nil, viewErr
	}
	return &views[0], nil
}

func (s *OrderService) buildViews(ctx context.Context, orders []domain.Order) ([]OrderView, error) {
	now := s.now()
	tiers := make(map[int64]domain.CustomerTier)

	var views = make([]OrderView, len(orders))
	for i, order := range orders {
		views[i] = OrderView{Order: order}
		if order.Status != domain.OrderStatusPending {
			continue
		}

		tier, ok := tiers[order.CustomerID]
		if !ok {
			customer, custErr := s.customerRepo.FindByID(ctx, order.CustomerID)
			if custErr != nil {
				return nil, custErr //nolint:wrapcheck
			}
			tier = customer.Tier
			tiers[order.CustomerID] = tier
		}
		views[i].LiveScoreEstimate = PriorityScore(tier, order.CreatedAt, now)
	}
	return views, nil
}

func (s *OrderService) txRepos(tx uow.TX) (OrderRepository, LogRepository, error) {
	orderRepo, orderRepoErr := uow.As[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, nil, orderRepoErr //nolint:wrapcheck
	}
	logRepo, logRepoErr := uow.As[LogRepository](tx, uow.RepositoryName(repoargs.LogRepoName))
	if logRepoErr != nil {
		return nil, nil, logRepoErr //nolint:wrapcheck
	}
	return orderRepo, logRepo, nil
}

// auditFailure пишет запись об отказе валидации вне транзакции мутации: мутация
// откатывается, а след в журнале сохраняется.
func (s *OrderService) auditFailure(ctx context.Context, customerID int64, details string) {
	_, _ = s.logRepo.Create(ctx, repoargs.LogCreate{
		CustomerID: customerID,
		LogType:    domain.LogTypeValidationFailed,
		Details:    details,
	})
}
