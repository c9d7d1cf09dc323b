package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"application-intake/config"
)

type VerifyPasscodeRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// 评审令牌有效期，过期是唯一的生命周期边界（无刷新、无吊销）
const reviewTokenTTL = 24 * time.Hour

// GenerateReviewToken 签发评审令牌，只携带 authorized 声明，不含用户身份
func GenerateReviewToken(ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"authorized": true,
		"exp":        expiresAt.Unix(),
	})

	tokenString, err := token.SignedString([]byte(config.GetConfig().JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyPasscode 验证共享评审口令，匹配则签发 24 小时令牌
func VerifyPasscode(c *gin.Context) {
	var req VerifyPasscodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	passcode := config.GetConfig().ReviewPasscode
	if subtle.ConstantTimeCompare([]byte(req.Passcode), []byte(passcode)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid passcode",
		})
		return
	}

	tokenString, _, err := GenerateReviewToken(reviewTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   tokenString,
	})
}
