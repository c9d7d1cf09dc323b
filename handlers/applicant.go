package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"application-intake/models"
	"application-intake/services"
)

// ApplicantHandler 评审侧接口，全部挂在评审令牌保护之后
type ApplicantHandler struct {
	db     *gorm.DB
	review *services.ReviewService
}

func NewApplicantHandler(db *gorm.DB, review *services.ReviewService) *ApplicantHandler {
	return &ApplicantHandler{
		db:     db,
		review: review,
	}
}

// List 按提交时间倒序列出全部申请（含文件）
func (h *ApplicantHandler) List(c *gin.Context) {
	var apps []models.Application
	if err := h.db.Preload("Files").Order("created_at DESC").Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applicants"})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// Get 获取单个申请人
func (h *ApplicantHandler) Get(c *gin.Context) {
	var app models.Application
	if err := h.db.Preload("Files").First(&app, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// Patch 评审部分更新：rank/status/universityEnrollment/notes 合并进
// data.reviewData，其余字段原样保留
func (h *ApplicantHandler) Patch(c *gin.Context) {
	var patch models.ReviewPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	app, err := h.review.ApplyReviewUpdate(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Applicant not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update applicant"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        app.ID,
		"name":      app.Name,
		"data":      app.Data,
		"updatedAt": app.UpdatedAt,
	})
}
