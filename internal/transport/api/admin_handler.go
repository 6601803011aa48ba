package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
)

// distributionTimeout больше обычного таймаута: пачка распределения обрабатывает
// заказы строго последовательно.
const distributionTimeout = 30 * time.Second

type AdminHandler struct {
	distributor DistributorServicer
}

func NewAdminHandler(distributor DistributorServicer) *AdminHandler {
	return &AdminHandler{
		distributor: distributor,
	}
}

type OutcomeResponse struct {
	OrderID   int64                  `json:"orderId"`
	Status    domain.OrderStatusType `json:"status"`
	TotalCost string                 `json:"totalCost"`
}

// ApproveDistribute POST RouteGroup + ApproveDistributeRoute. Подтверждает все
// ожидающие заказы и запускает пачку распределения. Только оператор.
func (h *AdminHandler) ApproveDistribute(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, distributionTimeout)
	defer cancel()

	outcomes, err := h.distributor.ApproveAndDistribute(reqCtx)

	var response = make([]OutcomeResponse, len(outcomes))
	for i, outcome := range outcomes {
		response[i] = OutcomeResponse{
			OrderID:   outcome.OrderID,
			Status:    outcome.Status,
			TotalCost: outcome.TotalCost.String(),
		}
	}

	if err != nil {
		// часть заказов могла быть обработана до ошибки; отдаем то что есть.
		// Детали по каждому упавшему заказу уже в логе.
		c.JSON(http.StatusInternalServerError, gin.H{
			"outcomes": response,
			"error":    "distribution finished with errors",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": response})
}
