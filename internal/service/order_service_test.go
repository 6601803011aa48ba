package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-market/pkg/uow/mocks"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockOrderRepo    *mocks.MockOrderRepository
	mockCustomerRepo *mocks.MockCustomerRepository
	mockProductRepo  *mocks.MockProductRepository
	mockLogRepo      *mocks.MockLogRepository
	orderService     *OrderService
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockCustomerRepo = mocks.NewMockCustomerRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockLogRepo = mocks.NewMockLogRepository(s.mockCtrl)

	// Мок получения репозиториев из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().Get(uow.RepositoryName(repoargs.CustomerRepoName)).
		Return(s.mockCustomerRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().Get(uow.RepositoryName(repoargs.LogRepoName)).
		Return(s.mockLogRepo, nil).AnyTimes()

	// Мок получения репозиториев из транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CustomerRepoName)).
		Return(s.mockCustomerRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.LogRepoName)).
		Return(s.mockLogRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	orderService, servErr := NewOrderService(s.mockUOW, NewAdmissionGate())
	s.Require().NoError(servErr)
	s.orderService = orderService
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) TestCreateEmptyItems() {
	order, err := s.orderService.Create(context.Background(), 1, nil)

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Nil(order)
}

func (s *OrderServiceTestSuite) TestCreateUnknownCustomer() {
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(42)).
		Return(nil, domain.ErrRecordNotFound)

	order, err := s.orderService.Create(context.Background(), 42, []OrderItemArgs{
		{ProductID: 1, Quantity: 1},
	})

	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	s.Nil(order)
}

func (s *OrderServiceTestSuite) TestCreateUnknownProduct() {
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Tier: domain.TierStandard}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(99)).
		Return(nil, domain.ErrRecordNotFound)

	order, err := s.orderService.Create(context.Background(), 1, []OrderItemArgs{
		{ProductID: 99, Quantity: 1},
	})

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Nil(order)
}

func (s *OrderServiceTestSuite) TestCreateQuantityExceedsStock() {
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Tier: domain.TierStandard}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(7)).
		Return(&domain.Product{ID: 7, Name: "gadget", Stock: 2, Price: decimal.NewFromInt(10)}, nil)

	order, err := s.orderService.Create(context.Background(), 1, []OrderItemArgs{
		{ProductID: 7, Quantity: 5},
	})

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Contains(vErr.Message, "gadget")
	s.Nil(order)
}

func (s *OrderServiceTestSuite) TestCreateNonPositiveQuantity() {
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Tier: domain.TierStandard}, nil)

	order, err := s.orderService.Create(context.Background(), 1, []OrderItemArgs{
		{ProductID: 7, Quantity: 0},
	})

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Nil(order)
}

// Цена позиции фиксируется из карточки товара на момент создания заказа.
func (s *OrderServiceTestSuite) TestCreateSnapshotsUnitPrice() {
	price := decimal.NewFromFloat(49.90)

	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Tier: domain.TierPremium}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(7)).
		Return(&domain.Product{ID: 7, Name: "gadget", Stock: 10, Price: price}, nil)

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
			s.Equal(int64(1), args.CustomerID)
			s.Equal(domain.OrderStatusPending, args.Status)
			s.Require().Len(args.Items, 1)
			s.True(args.Items[0].UnitPrice.Equal(price))

			return &domain.Order{
				ID:         11,
				CreatedAt:  time.Now(),
				CustomerID: args.CustomerID,
				Status:     args.Status,
				Items: []domain.OrderItem{
					{ID: 1, OrderID: 11, ProductID: 7, Quantity: 2, UnitPrice: price},
				},
			}, nil
		})

	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LogCreate) (*domain.Log, error) {
			s.Equal(domain.LogTypeOrderCreated, args.LogType)
			s.Require().NotNil(args.OrderID)
			s.Equal(int64(11), *args.OrderID)
			return &domain.Log{}, nil
		})

	order, err := s.orderService.Create(context.Background(), 1, []OrderItemArgs{
		{ProductID: 7, Quantity: 2},
	})

	s.Require().NoError(err)
	s.Require().NotNil(order)
	s.Equal(int64(11), order.ID)
	s.True(order.TotalCost().Equal(price.Mul(decimal.NewFromInt(2))))
}

// Состав можно менять только до заморозки скора.
func (s *OrderServiceTestSuite) TestUpdateRejectsNonPending() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(5)).
		Return(&domain.Order{ID: 5, CustomerID: 1, Status: domain.OrderStatusApproved}, nil)

	order, err := s.orderService.Update(context.Background(), 5, []OrderItemArgs{
		{ProductID: 7, Quantity: 1},
	})

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Nil(order)
}

// Отказ валидации при обновлении оставляет след в журнале, хотя сама мутация
// откатывается.
func (s *OrderServiceTestSuite) TestUpdateBudgetExceededLeavesAuditTrail() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(5)).
		Return(&domain.Order{ID: 5, CustomerID: 1, Status: domain.OrderStatusPending}, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Budget: decimal.NewFromInt(10)}, nil)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), int64(7)).
		Return(&domain.Product{ID: 7, Name: "gadget", Stock: 10, Price: decimal.NewFromInt(100)}, nil)

	s.mockLogRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LogCreate) (*domain.Log, error) {
			s.Equal(domain.LogTypeValidationFailed, args.LogType)
			return &domain.Log{}, nil
		})

	order, err := s.orderService.Update(context.Background(), 5, []OrderItemArgs{
		{ProductID: 7, Quantity: 1},
	})

	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Nil(order)
}

// Для PENDING-заказов на чтении считается живая оценка скора; сохраненное поле
// не трогается.
func (s *OrderServiceTestSuite) TestGetAllEstimatesLiveScore() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.orderService.now = func() time.Time { return now }

	orders := []domain.Order{
		{
			ID: 1, CreatedAt: now.Add(-10 * time.Second), CustomerID: 1,
			Status: domain.OrderStatusPending,
		},
		{
			ID: 2, CreatedAt: now.Add(-time.Hour), CustomerID: 1,
			Status: domain.OrderStatusCompleted, PriorityScore: decimal.NewFromInt(33),
		},
	}

	s.mockOrderRepo.EXPECT().GetAll(gomock.Any()).Return(orders, nil)
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Customer{ID: 1, Tier: domain.TierPremium}, nil)

	views, err := s.orderService.GetAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	// Premium: 20 + 10*0.5.
	s.True(views[0].LiveScoreEstimate.Equal(decimal.NewFromInt(25)),
		"got %s", views[0].LiveScoreEstimate)
	// Терминальный заказ оценку не получает, замороженный скор остается как есть.
	s.True(views[1].LiveScoreEstimate.IsZero())
	s.True(views[1].PriorityScore.Equal(decimal.NewFromInt(33)))
}
