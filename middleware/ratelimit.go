package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// 共享评审口令是系统里唯一的凭证，验证接口必须限速，
// 否则口令可以被无限速暴力猜测。
const (
	passcodeAttemptsPerMinute = 10
	attemptIdleExpiry         = 3 * time.Minute
)

type passcodeAttempter struct {
	limiter  *time.Ticker
	lastSeen time.Time
}

var (
	attempters = make(map[string]*passcodeAttempter)
	attemptMu  sync.Mutex
)

// PasscodeRateLimit 口令验证接口的按 IP 限速中间件
func PasscodeRateLimit() gin.HandlerFunc {
	// 清理长时间没有尝试的来源
	go cleanupAttempters()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		attemptMu.Lock()

		a, exists := attempters[ip]
		if !exists {
			ticker := time.NewTicker(time.Minute / passcodeAttemptsPerMinute)
			attempters[ip] = &passcodeAttempter{ticker, time.Now()}
			attemptMu.Unlock()
			c.Next()
			return
		}

		a.lastSeen = time.Now()
		attemptMu.Unlock()

		select {
		case <-a.limiter.C:
			c.Next()
		default:
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many attempts",
			})
			c.Abort()
		}
	}
}

func cleanupAttempters() {
	for {
		time.Sleep(time.Minute)
		attemptMu.Lock()
		for ip, a := range attempters {
			if time.Since(a.lastSeen) > attemptIdleExpiry {
				a.limiter.Stop()
				delete(attempters, ip)
			}
		}
		attemptMu.Unlock()
	}
}
