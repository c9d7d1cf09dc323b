package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"application-intake/config"
	"application-intake/models"
)

var DB *gorm.DB

// InitDB 初始化数据库
func InitDB() {
	var err error

	dbPath := config.GetConfig().DBPath

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// 自动迁移数据库结构
	err = DB.AutoMigrate(
		&models.Application{},
		&models.File{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Printf("Database initialized successfully at: %s", dbPath)
}
