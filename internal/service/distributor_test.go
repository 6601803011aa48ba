package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/fsm"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-market/pkg/uow/mocks"
)

type DistributorTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockOrderRepo    *mocks.MockOrderRepository
	mockCustomerRepo *mocks.MockCustomerRepository
	mockProductRepo  *mocks.MockProductRepository
	mockLogRepo      *mocks.MockLogRepository
	distributor      *Distributor
}

func TestDistributorSuite(t *testing.T) {
	suite.Run(t, new(DistributorTestSuite))
}

func (s *DistributorTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockCustomerRepo = mocks.NewMockCustomerRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockLogRepo = mocks.NewMockLogRepository(s.mockCtrl)

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	// Мок получения репозиториев из транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CustomerRepoName)).
		Return(s.mockCustomerRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.LogRepoName)).
		Return(s.mockLogRepo, nil).AnyTimes()

	// Мок транзакции: колбек выполняется сразу, над теми же моками.
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	distributor, distErr := NewDistributor(s.mockUOW, NewAdmissionGate(), fsm.New(), l)
	s.Require().NoError(distErr)
	s.distributor = distributor
}

func (s *DistributorTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *DistributorTestSuite) TestApproveFreezesPriority() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.distributor.now = func() time.Time { return now }

	pending := []domain.Order{
		{
			ID:         1,
			CreatedAt:  now.Add(-20 * time.Second),
			CustomerID: 10,
			Status:     domain.OrderStatusPending,
		},
		{
			ID:         2,
			CreatedAt:  now.Add(-20 * time.Second),
			CustomerID: 11,
			Status:     domain.OrderStatusPending,
		},
	}

	s.mockOrderRepo.EXPECT().GetPendingUnapproved(gomock.Any()).Return(pending, nil)

	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(10)).
		Return(&domain.Customer{ID: 10, Tier: domain.TierPremium}, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(11)).
		Return(&domain.Customer{ID: 11, Tier: domain.TierStandard}, nil)

	frozen := make(map[int64]repoargs.OrderApprovalUpdate)
	s.mockOrderRepo.EXPECT().
		UpdateApproval(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.OrderApprovalUpdate) (*domain.Order, error) {
			frozen[args.ID] = args
			return &domain.Order{ID: args.ID, Status: args.Status}, nil
		}).Times(2)

	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(&domain.Log{}, nil).Times(2)

	err := s.distributor.ApproveOrdersAndCalculatePriority(context.Background())
	s.Require().NoError(err)

	s.Require().Len(frozen, 2)
	// Premium: 20 + 20*0.5, Standard: 10 + 20*0.5.
	s.True(frozen[1].PriorityScore.Equal(decimal.NewFromInt(30)),
		"got %s", frozen[1].PriorityScore)
	s.True(frozen[2].PriorityScore.Equal(decimal.NewFromInt(20)),
		"got %s", frozen[2].PriorityScore)
	s.True(frozen[1].Approved)
	s.True(frozen[2].Approved)
	s.Equal(domain.OrderStatusApproved, frozen[1].Status)
	s.Equal(domain.OrderStatusApproved, frozen[2].Status)
}

func (s *DistributorTestSuite) TestApproveNothingPending() {
	s.mockOrderRepo.EXPECT().GetPendingUnapproved(gomock.Any()).Return([]domain.Order{}, nil)

	err := s.distributor.ApproveOrdersAndCalculatePriority(context.Background())
	s.Require().NoError(err)
}

// Последнюю единицу товара забирает заказ с большим замороженным скором; заказ с
// меньшим видит уже нулевой остаток и уходит в STOCK_INSUFFICIENT.
func (s *DistributorTestSuite) TestDistributeHigherPriorityTakesLastUnit() {
	price := decimal.NewFromInt(100)
	stock := int64(1)
	budgets := map[int64]decimal.Decimal{
		1: decimal.NewFromInt(500),
		2: decimal.NewFromInt(500),
	}

	item := domain.OrderItem{ProductID: 7, Quantity: 1, UnitPrice: price}
	orders := []domain.Order{
		{
			ID: 1, CustomerID: 1, Status: domain.OrderStatusApproved, Approved: true,
			PriorityScore: decimal.NewFromInt(30), Items: []domain.OrderItem{item},
		},
		{
			ID: 2, CustomerID: 2, Status: domain.OrderStatusApproved, Approved: true,
			PriorityScore: decimal.NewFromInt(20), Items: []domain.OrderItem{item},
		},
	}

	s.mockOrderRepo.EXPECT().GetApprovedSorted(gomock.Any()).Return(orders, nil)

	s.mockCustomerRepo.EXPECT().
		FindByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int64) (*domain.Customer, error) {
			return &domain.Customer{ID: id, Budget: budgets[id]}, nil
		}).AnyTimes()

	s.mockProductRepo.EXPECT().
		FindByID(gomock.Any(), int64(7)).
		DoAndReturn(func(_ context.Context, _ int64) (*domain.Product, error) {
			return &domain.Product{ID: 7, Name: "gadget", Stock: stock, Price: price}, nil
		}).AnyTimes()

	// Списание происходит ровно один раз - для заказа-победителя.
	s.mockProductRepo.EXPECT().
		DeductStock(gomock.Any(), int64(7), int64(1)).
		DoAndReturn(func(_ context.Context, _, quantity int64) error {
			stock -= quantity
			return nil
		})
	s.mockCustomerRepo.EXPECT().
		ApplyCharge(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int64, amount decimal.Decimal) error {
			budgets[id] = budgets[id].Sub(amount)
			return nil
		})

	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), int64(1), domain.OrderStatusCompleted).Return(nil)
	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), int64(2), domain.OrderStatusStockInsufficient).Return(nil)

	s.mockLogRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Log{}, nil).Times(2)

	outcomes, err := s.distributor.DistributeProductsByPriority(context.Background())
	s.Require().NoError(err)
	s.Require().Len(outcomes, 2)

	s.Equal(int64(1), outcomes[0].OrderID)
	s.Equal(domain.OrderStatusCompleted, outcomes[0].Status)
	s.Equal(int64(2), outcomes[1].OrderID)
	s.Equal(domain.OrderStatusStockInsufficient, outcomes[1].Status)

	s.Equal(int64(0), stock)
	s.True(budgets[1].Equal(decimal.NewFromInt(400)))
	s.True(budgets[2].Equal(decimal.NewFromInt(500)), "loser's budget must not change")
}

// Нехватка бюджета: заказ уходит в BUDGET_INSUFFICIENT, остатки и бюджет не
// трогаются - на списания не настроено ни одного мока.
func (s *DistributorTestSuite) TestDistributeBudgetInsufficient() {
	orders := []domain.Order{
		{
			ID: 5, CustomerID: 3, Status: domain.OrderStatusApproved, Approved: true,
			PriorityScore: decimal.NewFromInt(25),
			Items: []domain.OrderItem{
				{ProductID: 7, Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
			},
		},
	}

	s.mockOrderRepo.EXPECT().GetApprovedSorted(gomock.Any()).Return(orders, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(3)).
		Return(&domain.Customer{ID: 3, Budget: decimal.NewFromInt(50)}, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), int64(5), domain.OrderStatusBudgetInsufficient).
		Return(nil)
	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LogCreate) (*domain.Log, error) {
			s.Equal(domain.LogTypeBudgetInsufficient, args.LogType)
			return &domain.Log{}, nil
		})

	outcomes, err := s.distributor.DistributeProductsByPriority(context.Background())
	s.Require().NoError(err)
	s.Require().Len(outcomes, 1)
	s.Equal(domain.OrderStatusBudgetInsufficient, outcomes[0].Status)
	s.True(outcomes[0].TotalCost.Equal(decimal.NewFromInt(300)))
}

// Нехватка остатка по второй позиции обнаруживается до любых списаний: первая
// позиция не списывается частично.
func (s *DistributorTestSuite) TestDistributeNoPartialDeduction() {
	orders := []domain.Order{
		{
			ID: 6, CustomerID: 4, Status: domain.OrderStatusApproved, Approved: true,
			PriorityScore: decimal.NewFromInt(15),
			Items: []domain.OrderItem{
				{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
				{ProductID: 2, Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
			},
		},
	}

	s.mockOrderRepo.EXPECT().GetApprovedSorted(gomock.Any()).Return(orders, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(4)).
		Return(&domain.Customer{ID: 4, Budget: decimal.NewFromInt(1000)}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Product{ID: 1, Name: "bolt", Stock: 10, Price: decimal.NewFromInt(10)}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(2)).
		Return(&domain.Product{ID: 2, Name: "nut", Stock: 1, Price: decimal.NewFromInt(10)}, nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), int64(6), domain.OrderStatusStockInsufficient).
		Return(nil)
	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LogCreate) (*domain.Log, error) {
			s.Equal(domain.LogTypeStockInsufficient, args.LogType)
			s.Contains(args.Details, "nut")
			return &domain.Log{}, nil
		})

	outcomes, err := s.distributor.DistributeProductsByPriority(context.Background())
	s.Require().NoError(err)
	s.Require().Len(outcomes, 1)
	s.Equal(domain.OrderStatusStockInsufficient, outcomes[0].Status)
}

// Успешное распределение: бюджет 1000, остаток 5, цена 100, количество 3.
// После прогона остаток 2, бюджет 700, расходы 300, заказ COMPLETED.
func (s *DistributorTestSuite) TestDistributeApplies() {
	price := decimal.NewFromInt(100)
	stock := int64(5)
	budget := decimal.NewFromInt(1000)
	totalSpent := decimal.Zero

	orders := []domain.Order{
		{
			ID: 9, CustomerID: 8, Status: domain.OrderStatusApproved, Approved: true,
			PriorityScore: decimal.NewFromInt(35),
			Items: []domain.OrderItem{
				{ProductID: 3, Quantity: 3, UnitPrice: price},
			},
		},
	}

	s.mockOrderRepo.EXPECT().GetApprovedSorted(gomock.Any()).Return(orders, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(8)).
		Return(&domain.Customer{ID: 8, Budget: budget}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(3)).
		Return(&domain.Product{ID: 3, Name: "widget", Stock: stock, Price: price}, nil)

	s.mockProductRepo.EXPECT().
		DeductStock(gomock.Any(), int64(3), int64(3)).
		DoAndReturn(func(_ context.Context, _, quantity int64) error {
			stock -= quantity
			return nil
		})
	s.mockCustomerRepo.EXPECT().
		ApplyCharge(gomock.Any(), int64(8), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, amount decimal.Decimal) error {
			budget = budget.Sub(amount)
			totalSpent = totalSpent.Add(amount)
			return nil
		})

	s.mockOrderRepo.EXPECT().UpdateStatus(gomock.Any(), int64(9), domain.OrderStatusCompleted).Return(nil)
	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LogCreate) (*domain.Log, error) {
			s.Equal(domain.LogTypeOrderCompleted, args.LogType)
			return &domain.Log{}, nil
		})

	outcomes, err := s.distributor.DistributeProductsByPriority(context.Background())
	s.Require().NoError(err)
	s.Require().Len(outcomes, 1)

	s.Equal(domain.OrderStatusCompleted, outcomes[0].Status)
	s.True(outcomes[0].TotalCost.Equal(decimal.NewFromInt(300)))
	s.Equal(int64(2), stock)
	s.True(budget.Equal(decimal.NewFromInt(700)))
	s.True(totalSpent.Equal(decimal.NewFromInt(300)))
}

// Повторный прогон без новых подтвержденных заказов ничего не делает.
func (s *DistributorTestSuite) TestDistributeRepeatPassIsNoOp() {
	s.mockOrderRepo.EXPECT().GetApprovedSorted(gomock.Any()).Return([]domain.Order{}, nil)

	outcomes, err := s.distributor.DistributeProductsByPriority(context.Background())
	s.Require().NoError(err)
	s.Empty(outcomes)
}

func TestSortApprovedOrders(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		{ID: 4, CreatedAt: base.Add(time.Minute), PriorityScore: decimal.NewFromInt(20)},
		{ID: 3, CreatedAt: base, PriorityScore: decimal.NewFromInt(20)},
		{ID: 2, CreatedAt: base, PriorityScore: decimal.NewFromInt(20)},
		{ID: 1, CreatedAt: base, PriorityScore: decimal.NewFromInt(50)},
	}

	sortApprovedOrders(orders)

	var ids = make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	// Скор по убыванию, затем дата создания и id по возрастанию.
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}
