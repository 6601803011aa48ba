package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

// Distributor объединяет этап подтверждения (заморозка скора приоритета) и движок
// распределения дефицитных ресурсов между подтвержденными заказами.
type Distributor struct {
	uow         uow.UOW
	gate        *AdmissionGate
	transitions TransitionValidator
	orderRepo   OrderRepository
	l           *logrus.Entry
	now         func() time.Time
}

func NewDistributor(
	u uow.UOW,
	gate *AdmissionGate,
	transitions TransitionValidator,
	l *logrus.Logger,
) (*Distributor, error) {
	orderRepo, orderRepoErr := uow.As[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr //nolint:wrapcheck
	}
	return &Distributor{
		uow:         u,
		gate:        gate,
		transitions: transitions,
		orderRepo:   orderRepo,
		l: l.WithFields(logrus.Fields{
			"component": "distributor",
		}),
		now: time.Now,
	}, nil
}

// ApproveOrdersAndCalculatePriority подтверждает все заказы в статусе PENDING:
// считает и замораживает скор приоритета на текущий момент, ставит approved=true
// и переводит заказ в APPROVED. Единственное место, где скор записывается; после
// подтверждения он не пересчитывается.
//
// Вся пачка подтверждается одной транзакцией, на каждый заказ пишется запись
// аудита с разложением скора. Если подтверждать нечего - no-op.
func (d *Distributor) ApproveOrdersAndCalculatePriority(ctx context.Context) error {
	release := d.gate.Acquire()
	defer release()

	txErr := d.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, logRepo, repoErr := d.txRepos(tx)
		if repoErr != nil {
			return repoErr
		}
		ledger, ledgerErr := ledgerFromTX(tx)
		if ledgerErr != nil {
			return ledgerErr
		}

		orders, ordersErr := orderRepo.GetPendingUnapproved(c)
		if ordersErr != nil {
			return ordersErr
		}
		if len(orders) == 0 {
			return nil
		}

		now := d.now()
		tiers := make(map[int64]domain.CustomerTier)

		for _, order := range orders {
			tier, ok := tiers[order.CustomerID]
			if !ok {
				customer, custErr := ledger.Customer(c, order.CustomerID)
				if custErr != nil {
					return custErr
				}
				tier = customer.Tier
				tiers[order.CustomerID] = tier
			}

			breakdown := ScoreOrder(tier, order.CreatedAt, now)

			dst, trErr := d.transitions.Apply(c, order.Status, domain.EventApprove)
			if trErr != nil {
				return trErr
			}

			if _, updErr := orderRepo.UpdateApproval(c, repoargs.OrderApprovalUpdate{
				ID:            order.ID,
				Status:        dst,
				Approved:      true,
				PriorityScore: breakdown.Total,
			}); updErr != nil {
				return updErr
			}

			orderID := order.ID
			if _, logErr := logRepo.Create(c, repoargs.LogCreate{
				CustomerID: order.CustomerID,
				OrderID:    &orderID,
				LogType:    domain.LogTypeOrderApproved,
				Details: fmt.Sprintf(
					"base score: %s, waiting: %.2fs, waiting score: %s, total priority: %s",
					breakdown.Base, breakdown.WaitingSeconds, breakdown.WaitingScore, breakdown.Total,
				),
			}); logErr != nil {
				return logErr
			}
		}

		d.l.WithField("approved", len(orders)).Info("orders approved")
		return nil
	})

	if txErr != nil {
		return fmt.Errorf("approving orders: %w", txErr)
	}
	return nil
}

// DistributionOutcome - итог обработки одного заказа в пачке распределения.
type DistributionOutcome struct {
	OrderID   int64
	Status    domain.OrderStatusType
	TotalCost decimal.Decimal
}

// DistributeProductsByPriority обрабатывает все подтвержденные заказы строго
// последовательно, по убыванию замороженного скора (при равенстве - дата создания
// и id по возрастанию). Каждый следующий заказ видит остатки и бюджеты уже
// измененными предыдущими заказами этой же пачки: заказ с меньшим приоритетом
// никогда не заберет единицу ресурса, законно потребленную заказом с большим.
//
// Итог каждого заказа (статус + списания + аудит) коммитится отдельной
// транзакцией. Внутренняя ошибка на одном заказе не роняет остаток пачки: заказ
// остается в APPROVED и будет повторен следующим прогоном, ошибка логируется и
// возвращается в совокупности. Повторный прогон без новых подтвержденных заказов
// ничего не меняет.
func (d *Distributor) DistributeProductsByPriority(ctx context.Context) ([]DistributionOutcome, error) {
	release := d.gate.Acquire()
	defer release()

	orders, ordersErr := d.orderRepo.GetApprovedSorted(ctx)
	if ordersErr != nil {
		return nil, fmt.Errorf("distributing products: %w", ordersErr)
	}
	// порядок обработки - контракт, а не побочный эффект запроса: пересортировка
	// стабильна и повторяет ORDER BY репозитория.
	sortApprovedOrders(orders)

	var outcomes = make([]DistributionOutcome, 0, len(orders))
	var passErr error

	for i := range orders {
		outcome, err := d.distributeOne(ctx, &orders[i])
		if err != nil {
			d.l.WithError(err).WithField("orderID", orders[i].ID).Error("distribute order")
			passErr = errors.Join(passErr, err)
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	if passErr != nil {
		return outcomes, fmt.Errorf("distributing products: %w", passErr)
	}
	return outcomes, nil
}

// ApproveAndDistribute - административная точка входа: подтверждение и
// распределение подряд, одним вызовом.
func (d *Distributor) ApproveAndDistribute(ctx context.Context) ([]DistributionOutcome, error) {
	if err := d.ApproveOrdersAndCalculatePriority(ctx); err != nil {
		return nil, err
	}
	return d.DistributeProductsByPriority(ctx)
}

// distributeOne обрабатывает один заказ одной транзакцией.
//
// Алгоритм работы:
//  1. Полная стоимость по зафиксированным ценам позиций.
//  2. Бюджет меньше стоимости - BUDGET_INSUFFICIENT, ресурсы не трогаются.
//  3. Проверка остатка по всем позициям до каких-либо списаний: нехватка по любой
//     позиции - STOCK_INSUFFICIENT без частичного списания.
//  4. Все проверки пройдены - списание остатков, бюджет, total_spent, COMPLETED.
func (d *Distributor) distributeOne(ctx context.Context, order *domain.Order) (DistributionOutcome, error) {
	var outcome DistributionOutcome

	txErr := d.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, logRepo, repoErr := d.txRepos(tx)
		if repoErr != nil {
			return repoErr
		}
		ledger, ledgerErr := ledgerFromTX(tx)
		if ledgerErr != nil {
			return ledgerErr
		}

		totalCost := order.TotalCost()
		orderID := order.ID

		customer, custErr := ledger.Customer(c, order.CustomerID)
		if custErr != nil {
			return custErr
		}

		if customer.Budget.LessThan(totalCost) {
			dst, trErr := d.transitions.Apply(c, order.Status, domain.EventRejectBudget)
			if trErr != nil {
				return trErr
			}
			if updErr := orderRepo.UpdateStatus(c, order.ID, dst); updErr != nil {
				return updErr
			}
			if _, logErr := logRepo.Create(c, repoargs.LogCreate{
				CustomerID: order.CustomerID,
				OrderID:    &orderID,
				LogType:    domain.LogTypeBudgetInsufficient,
				Details:    fmt.Sprintf("order cost: %s, available budget: %s", totalCost, customer.Budget),
			}); logErr != nil {
				return logErr
			}
			outcome = DistributionOutcome{OrderID: order.ID, Status: dst, TotalCost: totalCost}
			return nil
		}

		for _, item := range order.Items {
			product, prodErr := ledger.Product(c, item.ProductID)
			if prodErr != nil {
				return prodErr
			}
			if product.Stock < item.Quantity {
				dst, trErr := d.transitions.Apply(c, order.Status, domain.EventRejectStock)
				if trErr != nil {
					return trErr
				}
				if updErr := orderRepo.UpdateStatus(c, order.ID, dst); updErr != nil {
					return updErr
				}
				if _, logErr := logRepo.Create(c, repoargs.LogCreate{
					CustomerID: order.CustomerID,
					OrderID:    &orderID,
					LogType:    domain.LogTypeStockInsufficient,
					Details: fmt.Sprintf(
						"product: %s, requested: %d, available stock: %d",
						product.Name, item.Quantity, product.Stock,
					),
				}); logErr != nil {
					return logErr
				}
				outcome = DistributionOutcome{OrderID: order.ID, Status: dst, TotalCost: totalCost}
				return nil
			}
		}

		for _, item := range order.Items {
			if dedErr := ledger.DeductStock(c, item.ProductID, item.Quantity); dedErr != nil {
				return dedErr
			}
		}
		if chargeErr := ledger.ChargeCustomer(c, order.CustomerID, totalCost); chargeErr != nil {
			return chargeErr
		}

		dst, trErr := d.transitions.Apply(c, order.Status, domain.EventComplete)
		if trErr != nil {
			return trErr
		}
		if updErr := orderRepo.UpdateStatus(c, order.ID, dst); updErr != nil {
			return updErr
		}

		remaining := customer.Budget.Sub(totalCost)
		if _, logErr := logRepo.Create(c, repoargs.LogCreate{
			CustomerID: order.CustomerID,
			OrderID:    &orderID,
			LogType:    domain.LogTypeOrderCompleted,
			Details: fmt.Sprintf(
				"total cost: %s, remaining budget: %s, priority score: %s",
				totalCost, remaining, order.PriorityScore,
			),
		}); logErr != nil {
			return logErr
		}

		outcome = DistributionOutcome{OrderID: order.ID, Status: dst, TotalCost: totalCost}
		return nil
	})

	if txErr != nil {
		return outcome, fmt.Errorf("distributing order %d: %w", order.ID, txErr)
	}
	return outcome, nil
}

// sortApprovedOrders сортирует пачку в порядке обработки: замороженный скор по
// убыванию, далее дата создания и id по возрастанию. Сортировка стабильная -
// детерминированный тай-брейк входит в контракт движка.
func sortApprovedOrders(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		cmp := orders[i].PriorityScore.Cmp(orders[j].PriorityScore)
		if cmp != 0 {
			return cmp > 0
		}
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}

func (d *Distributor) txRepos(tx uow.TX) (OrderRepository, LogRepository, error) {
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
