package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/fsdevblog/groph-market/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api"
	"github.com/fsdevblog/groph-market/pkg/uow"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork := uow.New(conn, map[uow.RepositoryName]uow.RepositoryFactory{
		uow.RepositoryName(repoargs.CustomerRepoName): func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCustomerRepository(dbtx)
		},
		uow.RepositoryName(repoargs.ProductRepoName): func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		uow.RepositoryName(repoargs.OrderRepoName): func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		uow.RepositoryName(repoargs.LogRepoName): func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewLogRepository(dbtx)
		},
	})

	services, sErr := service.Factory(unitOfWork, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:          a.Logger,
		OrderService:    services.OrderService,
		CustomerService: services.CustomerService,
		ProductService:  services.ProductService,
		AuditService:    services.AuditService,
		Distributor:     services.Distributor,
		JWTSecretKey:    []byte(a.Config.JWTSecret),
		AdminPassword:   a.Config.AdminPassword,
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}
