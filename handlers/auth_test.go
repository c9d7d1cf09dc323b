package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"application-intake/middleware"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("REVIEW_PASSCODE", "open-sesame")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/verify-passcode", VerifyPasscode)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/applicants", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func postPasscode(t *testing.T, r *gin.Engine, passcode string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"passcode": passcode})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-passcode", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getProtected(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/applicants", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestVerifyPasscodeRoundTrip(t *testing.T) {
	r := newAuthRouter()

	w := postPasscode(t, r, "open-sesame")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotEmpty(t, body.Token)

	// 刚签发的令牌立即可用
	resp := getProtected(r, "Bearer "+body.Token)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestVerifyPasscodeWrong(t *testing.T) {
	r := newAuthRouter()

	w := postPasscode(t, r, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyPasscodeMissingBody(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-passcode", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	r := newAuthRouter()

	expired, _, err := GenerateReviewToken(-time.Hour)
	require.NoError(t, err)

	w := getProtected(r, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// 过期、乱码、缺失三种失败对客户端必须呈现同一个文案，
// 不暴露具体失败原因。
func TestUnauthorizedResponsesAreUniform(t *testing.T) {
	r := newAuthRouter()

	expired, _, err := GenerateReviewToken(-time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"expired":   "Bearer " + expired,
		"malformed": "Bearer not-a-token",
		"badScheme": "Basic abc",
		"missing":   "",
	}

	var messages []string
	for name, header := range cases {
		w := getProtected(r, header)
		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		messages = append(messages, errorMessage(t, w))
	}

	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}
