package middleware

import (
	"time"

	"github.com/NaviFeed/navifeed-backend/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs one structured line per request, tagged with the request
// ID set by RequestIDMiddleware.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log := logger.GetLogger()
		log.Infow("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		)
	}
}
