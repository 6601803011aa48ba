package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/fsm"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type AppServices struct {
	OrderService    *OrderService
	Distributor     *Distributor
	CustomerService *CustomerService
	ProductService  *ProductService
	AuditService    *AuditService
}

// Factory собирает сервисы приложения. Шлюз допуска создается здесь в единственном
// экземпляре и делится между всеми сервисами: только так мутации заказов, клиентов
// и товаров сериализуются относительно друг друга.
func Factory(unitOfWork uow.UOW, l *logrus.Logger) (*AppServices, error) {
	gate := NewAdmissionGate()
	transitions := fsm.New()

	orderService, orderServiceErr := NewOrderService(unitOfWork, gate)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	distributor, distributorErr := NewDistributor(unitOfWork, gate, transitions, l)
	if distributorErr != nil {
		return nil, fmt.Errorf("service factory: %s", distributorErr.Error())
	}

	customerService, customerServiceErr := NewCustomerService(unitOfWork, gate)
	if customerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", customerServiceErr.Error())
	}

	productService, productServiceErr := NewProductService(unitOfWork, gate)
	if productServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", productServiceErr.Error())
	}

	auditService, auditServiceErr := NewAuditService(unitOfWork)
	if auditServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", auditServiceErr.Error())
	}

	return &AppServices{
		OrderService:    orderService,
		Distributor:     distributor,
		CustomerService: customerService,
		ProductService:  productService,
		AuditService:    auditService,
	}, nil
}
