package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/transport/api/tokens"
)

const authTokenTTL = 24 * time.Hour

type AuthHandler struct {
	customerService CustomerServicer
	jwtSecretKey    []byte
	adminPassword   string
}

func NewAuthHandler(customerService CustomerServicer, jwtSecretKey []byte, adminPassword string) *AuthHandler {
	return &AuthHandler{
		customerService: customerService,
		jwtSecretKey:    jwtSecretKey,
		adminPassword:   adminPassword,
	}
}

type LoginParams struct {
	Login    string `binding:"required,min=1,max=100" json:"login"`
	Password string `binding:"omitempty,max=255"      json:"password"`
}

type CustomerResponse struct {
	ID         int64               `json:"id"`
	CreatedAt  time.Time           `json:"createdAt"`
	Name       string              `json:"name"`
	Tier       domain.CustomerTier `json:"tier"`
	Budget     string              `json:"budget"`
	TotalSpent string              `json:"totalSpent"`
}

func customerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         customer.ID,
		CreatedAt:  customer.CreatedAt,
		Name:       customer.Name,
		Tier:       customer.Tier,
		Budget:     customer.Budget.String(),
		TotalSpent: customer.TotalSpent.String(),
	}
}

// Login POST RouteGroup + LoginRoute. Клиент входит по имени; оператор - по
// логину `operator` и паролю из конфигурации.
func (h *AuthHandler) Login(c *gin.Context) {
	var params LoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	if params.Login == "operator" {
		h.loginOperator(c, params)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.customerService.GetByName(ctx, params.Login)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	token, tokenErr := tokens.GenerateAuthJWT(customer.ID, tokens.RoleCustomer, authTokenTTL, h.jwtSecretKey)
	if tokenErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, tokenErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{"customer": customerResponse(customer)})
}

func (h *AuthHandler) loginOperator(c *gin.Context, params LoginParams) {
	if h.adminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(params.Password), []byte(h.adminPassword)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, tokenErr := tokens.GenerateAuthJWT(0, tokens.RoleOperator, authTokenTTL, h.jwtSecretKey)
	if tokenErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, tokenErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{"role": tokens.RoleOperator})
}
