package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 请求日志中间件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		log.Printf("[%s] %s %s %d %v",
			c.Request.Method,
			c.ClientIP(),
			c.Request.URL.Path,
			c.Writer.Status(),
			latency,
		)
	}
}
