package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup             = "/api"
	LoginRoute             = "/login"
	OrdersRoute            = "/orders"
	CustomersRoute         = "/customers"
	CustomersRandomRoute   = "/customers/random"
	ProductsRoute          = "/products"
	LogsRoute              = "/logs"
	ApproveDistributeRoute = "/admin/approve-distribute"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	OrderService    OrderServicer
	CustomerService CustomerServicer
	ProductService  ProductServicer
	AuditService    AuditServicer
	Distributor     DistributorServicer
	JWTSecretKey    []byte
	AdminPassword   string
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.CustomerService, args.JWTSecretKey, args.AdminPassword)
	ordersHandler := NewOrdersHandler(args.OrderService)
	customersHandler := NewCustomersHandler(args.CustomerService)
	productsHandler := NewProductsHandler(args.ProductService)
	logsHandler := NewLogsHandler(args.AuditService)
	adminHandler := NewAdminHandler(args.Distributor)

	api := r.Group(RouteGroup)

	api.POST(LoginRoute, authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.GET(OrdersRoute+"/:id", ordersHandler.Show)
	api.PUT(OrdersRoute+"/:id", ordersHandler.Update)
	api.DELETE(OrdersRoute+"/:id", ordersHandler.Delete)

	api.GET(ProductsRoute, productsHandler.Index)
	api.GET(ProductsRoute+"/:id", productsHandler.Show)
	api.GET(CustomersRoute+"/:id", customersHandler.Show)
	api.GET(CustomersRoute+"/:id/budget-check", customersHandler.BudgetCheck)
	api.GET(LogsRoute, logsHandler.Index)

	op := api.Group("", middlewares.OperatorRequired())
	// административные операции: карточки клиентов и товаров, полный журнал,
	// запуск подтверждения и распределения.
	op.POST(CustomersRoute, customersHandler.Create)
	op.POST(CustomersRandomRoute, customersHandler.CreateRandom)
	op.GET(CustomersRoute, customersHandler.Index)
	op.PUT(CustomersRoute+"/:id", customersHandler.Update)
	op.DELETE(CustomersRoute+"/:id", customersHandler.Delete)

	op.POST(ProductsRoute, productsHandler.Create)
	op.PUT(ProductsRoute+"/:id", productsHandler.Update)
	op.DELETE(ProductsRoute+"/:id", productsHandler.Delete)

	op.POST(ApproveDistributeRoute, adminHandler.ApproveDistribute)
	return r
}
