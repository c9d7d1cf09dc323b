package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"application-intake/config"
	"application-intake/database"
	"application-intake/handlers"
	"application-intake/middleware"
	"application-intake/services"
)

func main() {
	// .env 可选，容器环境直接注入环境变量
	_ = godotenv.Load()

	cfg := config.GetConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	storageCfg := config.LoadStorageConfig()
	if err := storageCfg.Validate(); err != nil {
		log.Fatalf("存储配置校验失败: %v", err)
	}

	// 初始化数据库
	database.InitDB()

	// 初始化对象存储
	storage, err := services.NewS3Storage(storageCfg)
	if err != nil {
		log.Fatalf("创建对象存储客户端失败: %v", err)
	}
	if err := storage.EnsureBucket(context.Background()); err != nil {
		// 桶初始化失败不阻断启动，首次上传会再次暴露问题
		log.Printf("初始化存储桶失败: %v", err)
	}

	fileService := services.NewFileService(storage, storage.Bucket(), database.DB)
	reviewService := services.NewReviewService(database.DB)
	notificationService := services.NewNotificationService(cfg.SlackWebhook, cfg.BaseURL)

	fileHandler := handlers.NewFileHandler(database.DB, fileService)
	applicationHandler := handlers.NewApplicationHandler(database.DB, fileService, notificationService)
	applicantHandler := handlers.NewApplicantHandler(database.DB, reviewService)

	// 创建 Gin 路由
	r := gin.Default()
	r.Use(middleware.Logger())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * 3600,
	}))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// 公开路由
	public := r.Group("/api")
	{
		public.POST("/applications", applicationHandler.Create)
		public.GET("/applications", applicationHandler.List)
		public.GET("/applications/:id", applicationHandler.Get)
		public.PUT("/applications/:id", applicationHandler.Update)
		public.DELETE("/applications/:id", applicationHandler.Delete)

		public.POST("/files/upload", fileHandler.Upload)
		public.GET("/files/:id", fileHandler.Get)
		public.GET("/files/:id/view", fileHandler.View) // Slack 作品集链接使用
		public.DELETE("/files/:id", fileHandler.Delete)

		public.POST("/auth/verify-passcode", middleware.PasscodeRateLimit(), handlers.VerifyPasscode)
	}

	// 需要评审令牌的路由
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/applicants", applicantHandler.List)
		protected.GET("/applicants/:id", applicantHandler.Get)
		protected.PATCH("/applicants/:id", applicantHandler.Patch)
		protected.GET("/files/:id/download", fileHandler.Download)
	}

	// 启动服务器
	port := cfg.ServerPort
	log.Printf("Server starting on port %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}
