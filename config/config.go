package config

import (
	"fmt"
	"log"
	"os"
)

type Config struct {
	ServerPort     string
	DBPath         string
	JWTSecret      string
	ReviewPasscode string
	SlackWebhook   string
	BaseURL        string
}

var config *Config

// GetConfig 获取配置
func GetConfig() *Config {
	if config == nil {
		config = &Config{
			ServerPort:     getEnv("PORT", "3000"),
			JWTSecret:      os.Getenv("JWT_SECRET"),
			ReviewPasscode: os.Getenv("REVIEW_PASSCODE"),
			SlackWebhook:   os.Getenv("SLACK_URL"),
			BaseURL:        getEnv("BASE_URL", "http://localhost:3000"),
			// 使用绝对路径，方便 Docker 挂载
			DBPath: getEnv("DB_PATH", "/app/data/applications.db"),
		}

		// 打印配置信息（不含敏感信息）
		log.Printf("Config loaded - ServerPort: %s, DBPath: %s, BaseURL: %s",
			config.ServerPort, config.DBPath, config.BaseURL)
	}
	return config
}

// Validate 校验必需的密钥，缺失时启动阶段直接失败
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET 未设置")
	}
	if c.ReviewPasscode == "" {
		return fmt.Errorf("REVIEW_PASSCODE 未设置")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
