package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
)

type LogsHandler struct {
	auditSvs AuditServicer
}

func NewLogsHandler(auditSvs AuditServicer) *LogsHandler {
	return &LogsHandler{
		auditSvs: auditSvs,
	}
}

type LogResponse struct {
	ID         int64          `json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	CustomerID int64          `json:"customerId"`
	OrderID    *int64         `json:"orderId,omitempty"`
	LogType    domain.LogType `json:"logType"`
	Details    string         `json:"details"`
}

// Index GET RouteGroup + LogsRoute. Оператор видит весь журнал, клиент - записи
// по своим операциям.
func (h *LogsHandler) Index(c *gin.Context) {
	limit, _ := strconv.ParseUint(c.Query("limit"), 10, 32)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var logs []domain.Log
	var err error
	if isOperator(c) {
		logs, err = h.auditSvs.GetAll(reqCtx, uint(limit))
	} else {
		logs, err = h.auditSvs.GetByCustomerID(reqCtx, getUserIDFromContext(c), uint(limit))
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(logs) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	var response = make([]LogResponse, len(logs))
	for i, l := range logs {
		response[i] = LogResponse{
			ID:         l.ID,
			CreatedAt:  l.CreatedAt,
			CustomerID: l.CustomerID,
			OrderID:    l.OrderID,
			LogType:    l.LogType,
			Details:    l.Details,
		}
	}
	c.JSON(http.StatusOK, response)
}
