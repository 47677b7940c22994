package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"go.uber.org/zap"
)

// InternalServerErrorMessage is the only detail a client sees for an unexpected fault
const InternalServerErrorMessage = "Internal server error"

// RecoveryMiddleware turns panics into a generic 500 envelope. The panic value
// and stack trace go to the log only.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.Envelope{
			Success: false,
			Message: InternalServerErrorMessage,
		})
	})
}
