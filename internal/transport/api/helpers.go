package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-market/internal/transport/api/tokens"
)

func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

func isOperator(c *gin.Context) bool {
	return c.GetString(middlewares.CurrentRoleKey) == tokens.RoleOperator
}

// paramID парсит путевой параметр :id. При ошибке пишет 400 и возвращает false.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypeBind)
		return 0, false
	}
	return id, true
}
