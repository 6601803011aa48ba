package api

import (
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

type AdminHandlerTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	router          *gin.Engine
	mockDistributor *mocks.MockDistributorServicer
	jwtSecret       []byte
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockDistributor = mocks.NewMockDistributorServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:       logger.New(os.Stdout, "error"),
		Distributor:  s.mockDistributor,
		JWTSecretKey: s.jwtSecret,
	})
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *AdminHandlerTestSuite) TestApproveDistribute() {
	operatorToken, opErr := tokens.GenerateAuthJWT(0, tokens.RoleOperator, time.Hour, s.jwtSecret)
	s.Require().NoError(opErr)
	customerToken, custErr := tokens.GenerateAuthJWT(1, tokens.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(custErr)

	outcomes := []service.DistributionOutcome{
		{OrderID: 1, Status: domain.OrderStatusCompleted, TotalCost: decimal.NewFromInt(300)},
		{OrderID: 2, Status: domain.OrderStatusStockInsufficient, TotalCost: decimal.NewFromInt(100)},
	}
	// Вызывается только оператором.
	s.mockDistributor.EXPECT().ApproveAndDistribute(gomock.Any()).Return(outcomes, nil).Times(1)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "operator runs the pass",
			jwtToken:   operatorToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "customer is forbidden",
			jwtToken:   customerToken,
			wantStatus: http.StatusForbidden,
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
				Method: http.MethodPost,
				URL:    RouteGroup + ApproveDistributeRoute,
			}
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithHeader("Authorization", "Bearer "+t.jwtToken))
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
