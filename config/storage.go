// config/storage.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// StorageConfig 对象存储配置
type StorageConfig struct {
	S3AccessKey  string
	S3SecretKey  string
	S3Region     string
	S3Bucket     string
	S3Endpoint   string // 可选，支持MinIO
	UsePathStyle bool   // MinIO 一般需要 path-style 访问
}

// LoadStorageConfig 从环境变量加载存储配置
func LoadStorageConfig() *StorageConfig {
	return &StorageConfig{
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		S3Region:     getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Bucket:     getEnvOrDefault("S3_BUCKET", "applications"),
		S3Endpoint:   normalizeEndpoint(os.Getenv("S3_ENDPOINT")), // 支持MinIO等
		UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") == "true",
	}
}

// Validate 验证配置
func (c *StorageConfig) Validate() error {
	if c.S3AccessKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY 未设置")
	}
	if c.S3SecretKey == "" {
		return fmt.Errorf("S3_SECRET_KEY 未设置")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET 未设置")
	}
	return nil
}

// normalizeEndpoint 容忍带协议前缀的 endpoint 配置
func normalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "http://" + endpoint
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
