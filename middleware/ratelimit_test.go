package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// 首次尝试直接放行，紧随其后的第二次尝试在限速窗口内被拒绝
func TestPasscodeRateLimitThrottlesRepeatedAttempts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/verify", PasscodeRateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	attempt := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, attempt().Code)
	assert.Equal(t, http.StatusTooManyRequests, attempt().Code)
}
