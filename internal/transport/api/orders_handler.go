package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderItemParams struct {
	ProductID int64 `binding:"required,min=1" json:"productId"`
	Quantity  int64 `binding:"required,min=1" json:"quantity"`
}

type OrderCreateParams struct {
	// CustomerID учитывается только для оператора; клиент всегда создает заказ
	// от своего имени.
	CustomerID int64             `binding:"omitempty,min=1"     json:"customerId"`
	Items      []OrderItemParams `binding:"required,min=1,dive" json:"items"`
}

type OrderItemResponse struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type OrderResponse struct {
	ID            int64                  `json:"id"`
	CreatedAt     time.Time              `json:"createdAt"`
	CustomerID    int64                  `json:"customerId"`
	Status        domain.OrderStatusType `json:"status"`
	Approved      bool                   `json:"approved"`
	PriorityScore string                 `json:"priorityScore"`
	LiveScore     string                 `json:"liveScoreEstimate,omitempty"`
	TotalCost     string                 `json:"totalCost"`
	Items         []OrderItemResponse    `json:"items"`
}

func orderResponse(order *domain.Order, liveScore string) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		}
	}
	return OrderResponse{
		ID:            order.ID,
		CreatedAt:     order.CreatedAt,
		CustomerID:    order.CustomerID,
		Status:        order.Status,
		Approved:      order.Approved,
		PriorityScore: order.PriorityScore.String(),
		LiveScore:     liveScore,
		TotalCost:     order.TotalCost().String(),
		Items:         items,
	}
}

func viewResponse(view *service.OrderView) OrderResponse {
	var liveScore string
	if view.Status == domain.OrderStatusPending {
		liveScore = view.LiveScoreEstimate.String()
	}
	return orderResponse(&view.Order, liveScore)
}

// Create POST RouteGroup + OrdersRoute.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	customerID := getUserIDFromContext(c)
	if isOperator(c) && params.CustomerID != 0 {
		customerID = params.CustomerID
	}

	items := make([]service.OrderItemArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.OrderItemArgs{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, customerID, items)
	if createErr != nil {
		abortOrderError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, viewResponse(&service.OrderView{Order: *order}))
}

// Index GET RouteGroup + OrdersRoute. Оператор видит все заказы, клиент - свои.
func (o *OrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var views []service.OrderView
	var err error
	if isOperator(c) {
		views, err = o.orderSvs.GetAll(reqCtx)
	} else {
		views, err = o.orderSvs.GetByCustomerID(reqCtx, getUserIDFromContext(c))
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(views) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	var response = make([]OrderResponse, len(views))
	for i := range views {
		response[i] = viewResponse(&views[i])
	}
	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + OrdersRoute + /:id.
func (o *OrdersHandler) Show(c *gin.Context) {
	view, ok := o.findOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewResponse(view))
}

// Update PUT RouteGroup + OrdersRoute + /:id. Меняет состав заказа целиком.
func (o *OrdersHandler) Update(c *gin.Context) {
	view, ok := o.findOwned(c)
	if !ok {
		return
	}

	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	items := make([]service.OrderItemArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.OrderItemArgs{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, updErr := o.orderSvs.Update(reqCtx, view.ID, items)
	if updErr != nil {
		abortOrderError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, viewResponse(&service.OrderView{Order: *order}))
}

// Delete DELETE RouteGroup + OrdersRoute + /:id.
func (o *OrdersHandler) Delete(c *gin.Context) {
	view, ok := o.findOwned(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := o.orderSvs.Delete(reqCtx, view.ID); err != nil {
		abortOrderError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

// findOwned находит заказ по :id и проверяет право доступа: клиент видит только
// свои заказы, оператор - любые.
func (o *OrdersHandler) findOwned(c *gin.Context) (*service.OrderView, bool) {
	orderID, ok := paramID(c)
	if !ok {
		return nil, false
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	view, err := o.orderSvs.GetByID(reqCtx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return nil, false
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return nil, false
	}

	if !isOperator(c) && view.CustomerID != getUserIDFromContext(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return nil, false
	}
	return view, true
}

func abortOrderError(c *gin.Context, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		_ = c.AbortWithError(http.StatusUnprocessableEntity, valErr).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
