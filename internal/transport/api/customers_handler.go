package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

type CustomersHandler struct {
	customerSvs CustomerServicer
}

func NewCustomersHandler(customerSvs CustomerServicer) *CustomersHandler {
	return &CustomersHandler{
		customerSvs: customerSvs,
	}
}

type CustomerParams struct {
	Name   string `binding:"required,min=1,max=100"            json:"name"`
	Tier   string `binding:"required,oneof=Standard Premium"   json:"tier"`
	Budget string `binding:"omitempty"                         json:"budget"`
}

func (p *CustomerParams) toArgs(c *gin.Context) (service.CustomerArgs, bool) {
	budget := decimal.Zero
	if p.Budget != "" {
		var parseErr error
		budget, parseErr = decimal.NewFromString(p.Budget)
		if parseErr != nil {
			_ = c.AbortWithError(http.StatusUnprocessableEntity, parseErr).SetType(gin.ErrorTypeBind)
			return service.CustomerArgs{}, false
		}
	}
	return service.CustomerArgs{
		Name:   p.Name,
		Tier:   domain.CustomerTier(p.Tier),
		Budget: budget,
	}, true
}

// Create POST RouteGroup + CustomersRoute. Только оператор.
func (h *CustomersHandler) Create(c *gin.Context) {
	var params CustomerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	args, ok := params.toArgs(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.customerSvs.Create(reqCtx, args)
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customerResponse(customer)})
}

type RandomCustomerParams struct {
	Name string `binding:"required,min=1,max=100"          json:"name"`
	Tier string `binding:"required,oneof=Standard Premium" json:"tier"`
}

// CreateRandom POST RouteGroup + CustomersRandomRoute. Клиент со случайным
// бюджетом, для наполнения стенда.
func (h *CustomersHandler) CreateRandom(c *gin.Context) {
	var params RandomCustomerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.customerSvs.CreateRandom(reqCtx, params.Name, domain.CustomerTier(params.Tier))
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customerResponse(customer)})
}

// Index GET RouteGroup + CustomersRoute. Только оператор.
func (h *CustomersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customers, err := h.customerSvs.GetAll(reqCtx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	var response = make([]CustomerResponse, len(customers))
	for i := range customers {
		response[i] = customerResponse(&customers[i])
	}
	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + CustomersRoute + /:id. Клиент видит только свою карточку.
func (h *CustomersHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if !isOperator(c) && id != getUserIDFromContext(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.customerSvs.GetByID(reqCtx, id)
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customerResponse(customer)})
}

// BudgetCheck GET RouteGroup + CustomersRoute + /:id/budget-check. Проверяет,
// хватит ли текущего бюджета клиента на quantity единиц по цене unitPrice, ничего
// не списывая. Клиент проверяет только свой бюджет.
func (h *CustomersHandler) BudgetCheck(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if !isOperator(c) && id != getUserIDFromContext(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	quantity, qtyErr := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if qtyErr != nil || quantity <= 0 {
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("quantity must be a positive integer")).
			SetType(gin.ErrorTypePublic)
		return
	}
	unitPrice, priceErr := decimal.NewFromString(c.Query("unitPrice"))
	if priceErr != nil || unitPrice.IsNegative() {
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("unitPrice must be a non-negative number")).
			SetType(gin.ErrorTypePublic)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	sufficient, err := h.customerSvs.CheckBudget(reqCtx, id, quantity, unitPrice)
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sufficient": sufficient})
}

// Update PUT RouteGroup + CustomersRoute + /:id. Только оператор.
func (h *CustomersHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var params CustomerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}
	args, argsOK := params.toArgs(c)
	if !argsOK {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.customerSvs.Update(reqCtx, id, args)
	if err != nil {
		abortCustomerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customerResponse(customer)})
}

// Delete DELETE RouteGroup + CustomersRoute + /:id. Только оператор.
func (h *CustomersHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.customerSvs.Delete(reqCtx, id); err != nil {
		abortCustomerError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func abortCustomerError(c *gin.Context, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		_ = c.AbortWithError(http.StatusUnprocessableEntity, valErr).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrDuplicateKey):
		_ = c.AbortWithError(http.StatusConflict, errors.New("customer with this name already exists")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
