package api

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-market/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-market/internal/transport/api/tokens"
)

type OrdersHandlerTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	router           *gin.Engine
	mockOrderService *mocks.MockOrderServicer
	jwtSecret        []byte
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockOrderService = mocks.NewMockOrderServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout, "error"),
		OrderService: s.mockOrderService,
		JWTSecretKey: s.jwtSecret,
	})
}

func (s *OrdersHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrdersHandlerTestSuite) customerToken(id int64) string {
	token, err := tokens.GenerateAuthJWT(id, tokens.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *OrdersHandlerTestSuite) operatorToken() string {
	token, err := tokens.GenerateAuthJWT(0, tokens.RoleOperator, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	var currentUserID int64 = 1

	validPayload := []byte(`{"items":[{"productId":7,"quantity":2}]}`)
	rejectedPayload := []byte(`{"items":[{"productId":99,"quantity":2}]}`)
	invalidPayload := []byte(`{"items":[]}`)

	// Моки
	// Валидный запрос.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), currentUserID, []service.OrderItemArgs{{ProductID: 7, Quantity: 2}}).
		Return(&domain.Order{
			ID:         10,
			CreatedAt:  time.Now(),
			CustomerID: currentUserID,
			Status:     domain.OrderStatusPending,
		}, nil).Times(1)
	// Сервис отклоняет заказ на несуществующий товар.
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), currentUserID, []service.OrderItemArgs{{ProductID: 99, Quantity: 2}}).
		Return(nil, domain.NewValidationError("product 99 does not exist")).Times(1)

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			jwtToken:   s.customerToken(currentUserID),
			wantStatus: http.StatusCreated,
		}, {
			name:       "unknown product",
			payload:    rejectedPayload,
			jwtToken:   s.customerToken(currentUserID),
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "empty items",
			payload:    invalidPayload,
			jwtToken:   s.customerToken(currentUserID),
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "not authorized",
			payload:    validPayload,
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + OrdersRoute,
				Body:   bytes.NewReader(t.payload),
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				authHeader := fmt.Sprintf("Bearer %s", t.jwtToken)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", authHeader))
			}
			reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json"))
			res, err := testutils.MakeRequest(args, reqOpts...)

			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *OrdersHandlerTestSuite) TestIndex() {
	var customerID int64 = 1
	var emptyCustomerID int64 = 2

	views := []service.OrderView{
		{
			Order: domain.Order{
				ID:         1,
				CreatedAt:  time.Now(),
				CustomerID: customerID,
				Status:     domain.OrderStatusPending,
			},
			LiveScoreEstimate: decimal.NewFromInt(25),
		},
	}

	// Клиент видит только свои заказы, оператор - все.
	s.mockOrderService.EXPECT().GetByCustomerID(gomock.Any(), customerID).Return(views, nil)
	s.mockOrderService.EXPECT().GetByCustomerID(gomock.Any(), emptyCustomerID).Return([]service.OrderView{}, nil)
	s.mockOrderService.EXPECT().GetAll(gomock.Any()).Return(views, nil)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "customer with orders",
			jwtToken:   s.customerToken(customerID),
			wantStatus: http.StatusOK,
		}, {
			name:       "customer without orders",
			jwtToken:   s.customerToken(emptyCustomerID),
			wantStatus: http.StatusNoContent,
		}, {
			name:       "operator sees all",
			jwtToken:   s.operatorToken(),
			wantStatus: http.StatusOK,
		}, {
			name:       "not authorized",
			jwtToken:   "",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + OrdersRoute,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				authHeader := fmt.Sprintf("Bearer %s", t.jwtToken)
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", authHeader))
			}
			res, err := testutils.MakeRequest(args, reqOpts...)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

// Чужой заказ недоступен клиенту ни на чтение, ни на изменение.
func (s *OrdersHandlerTestSuite) TestShowForbiddenForForeignOrder() {
	view := &service.OrderView{
		Order: domain.Order{ID: 5, CustomerID: 42, Status: domain.OrderStatusPending},
	}
	s.mockOrderService.EXPECT().GetByID(gomock.Any(), int64(5)).Return(view, nil).Times(2)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "owner",
			jwtToken:   s.customerToken(42),
			wantStatus: http.StatusOK,
		}, {
			name:       "foreign customer",
			jwtToken:   s.customerToken(1),
			wantStatus: http.StatusForbidden,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			args := testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodGet,
				URL:    RouteGroup + OrdersRoute + "/5",
			}
			res, err := testutils.MakeRequest(args,
				testutils.WithHeader("Authorization", "Bearer "+t.jwtToken))
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Require().NoError(err)
			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
