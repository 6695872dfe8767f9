package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware кладёт request-scoped логгер в контекст gin и пишет
// итоговую строку по каждому запросу. Хендлеры достают логгер через
// c.MustGet("logger").
func LoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Set("logger", reqLog)

		start := time.Now()
		c.Next()

		reqLog.Info("Request handled",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
