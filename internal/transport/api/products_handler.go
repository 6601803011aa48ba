package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

type ProductsHandler struct {
	productSvs ProductServicer
}

func NewProductsHandler(productSvs ProductServicer) *ProductsHandler {
	return &ProductsHandler{
		productSvs: productSvs,
	}
}

type ProductParams struct {
	Name  string `binding:"required,min=1,max=200" json:"name"`
	Stock int64  `binding:"min=0"                  json:"stock"`
	Price string `binding:"required"               json:"price"`
}

type ProductResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Stock     int64     `json:"stock"`
	Price     string    `json:"price"`
}

func productResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		CreatedAt: product.CreatedAt,
		Name:      product.Name,
		Stock:     product.Stock,
		Price:     product.Price.String(),
	}
}

func (p *ProductParams) toArgs(c *gin.Context) (service.ProductArgs, bool) {
	price, parseErr := decimal.NewFromString(p.Price)
	if parseErr != nil {
		_ = c.AbortWithError(http.StatusUnprocessableEntity, parseErr).SetType(gin.ErrorTypeBind)
		return service.ProductArgs{}, false
	}
	return service.ProductArgs{
		Name:  p.Name,
		Stock: p.Stock,
		Price: price,
	}, true
}

// Create POST RouteGroup + ProductsRoute. Только оператор.
func (h *ProductsHandler) Create(c *gin.Context) {
	var params ProductParams
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

	product, err := h.productSvs.Create(reqCtx, args)
	if err != nil {
		abortProductError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": productResponse(product)})
}

// Index GET RouteGroup + ProductsRoute. Витрина, доступна любому авторизованному.
func (h *ProductsHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.productSvs.GetAll(reqCtx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	var response = make([]ProductResponse, len(products))
	for i := range products {
		response[i] = productResponse(&products[i])
	}
	c.JSON(http.StatusOK, response)
}

// Show GET RouteGroup + ProductsRoute + /:id.
func (h *ProductsHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.productSvs.GetByID(reqCtx, id)
	if err != nil {
		abortProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": productResponse(product)})
}

// Update PUT RouteGroup + ProductsRoute + /:id. Только оператор.
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var params ProductParams
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

	product, err := h.productSvs.Update(reqCtx, id, args)
	if err != nil {
		abortProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": productResponse(product)})
}

// Delete DELETE RouteGroup + ProductsRoute + /:id. Только оператор.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.productSvs.Delete(reqCtx, id); err != nil {
		abortProductError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func abortProductError(c *gin.Context, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		_ = c.AbortWithError(http.StatusUnprocessableEntity, valErr).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrDuplicateKey):
		_ = c.AbortWithError(http.StatusConflict, errors.New("product with this name already exists")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
