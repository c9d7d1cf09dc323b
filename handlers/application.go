package handlers

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"application-intake/models"
	"application-intake/services"
)

type ApplicationHandler struct {
	db       *gorm.DB
	files    *services.FileService
	notifier *services.NotificationService
}

func NewApplicationHandler(db *gorm.DB, files *services.FileService, notifier *services.NotificationService) *ApplicationHandler {
	return &ApplicationHandler{
		db:       db,
		files:    files,
		notifier: notifier,
	}
}

// Create 创建申请。fileIds 指向的未关联文件会被并发迁移到新申请的
// 命名空间下；部分迁移失败时整个请求报错，已迁移的文件不回滚。
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 字段约束失败时指明约束，其余解析错误给通用文案
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		}
		return
	}

	app := models.Application{
		Name:        req.Name,
		Description: req.Description,
		Data:        datatypes.JSONMap(req.Data),
	}
	if err := h.db.Create(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	// 每个文件的迁移相互独立，并发执行，无顺序要求
	if len(req.FileIDs) > 0 {
		ctx := c.Request.Context()
		var wg sync.WaitGroup
		errCh := make(chan error, len(req.FileIDs))

		for _, fileID := range req.FileIDs {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := h.files.MoveFileToApplication(ctx, id, app.ID); err != nil {
					errCh <- err
				}
			}(fileID)
		}
		wg.Wait()
		close(errCh)

		var failed int
		for err := range errCh {
			failed++
			log.Printf("文件关联失败 (application %s): %v", app.ID, err)
		}
		if failed > 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach uploaded files"})
			return
		}
	}

	var created models.Application
	if err := h.db.Preload("Files").First(&created, "id = ?", app.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load application"})
		return
	}

	h.notifyNewApplication(&created)

	c.JSON(http.StatusCreated, created)
}

// notifyNewApplication 触发异步 Slack 通知，作品集文件按 key 中的
// portfolio 标签加 PDF 类型识别
func (h *ApplicationHandler) notifyNewApplication(app *models.Application) {
	portfolioURL := ""
	for _, file := range app.Files {
		if services.FileKindFromKey(file.S3Key) == "portfolio" && file.MimeType == "application/pdf" {
			portfolioURL = h.notifier.PortfolioViewURL(file.ID)
			break
		}
	}
	h.notifier.NotifyNewApplication(app, portfolioURL)
}

// List 获取申请列表
func (h *ApplicationHandler) List(c *gin.Context) {
	var apps []models.Application
	if err := h.db.Preload("Files").Order("created_at DESC").Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// Get 获取单个申请
func (h *ApplicationHandler) Get(c *gin.Context) {
	var app models.Application
	if err := h.db.Preload("Files").First(&app, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// Update 更新申请的基础字段
func (h *ApplicationHandler) Update(c *gin.Context) {
	var app models.Application
	if err := h.db.First(&app, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var req models.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}
		app.Name = *req.Name
	}
	if req.Description != nil {
		app.Description = *req.Description
	}
	if req.Data != nil {
		app.Data = datatypes.JSONMap(req.Data)
	}

	if err := h.db.Save(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update application"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// Delete 删除申请（不级联删除文件）
func (h *ApplicationHandler) Delete(c *gin.Context) {
	var app models.Application
	if err := h.db.First(&app, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	if err := h.db.Delete(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete application"})
		return
	}

	c.Status(http.StatusNoContent)
}
