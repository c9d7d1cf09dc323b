package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"application-intake/models"
	"application-intake/services"
)

type FileHandler struct {
	db    *gorm.DB
	files *services.FileService
}

func NewFileHandler(db *gorm.DB, files *services.FileService) *FileHandler {
	return &FileHandler{
		db:    db,
		files: files,
	}
}

// Upload 上传文件（multipart），applicationId 缺省时进入未关联命名空间
func (h *FileHandler) Upload(c *gin.Context) {
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	var applicationID *string
	if id := c.PostForm("applicationId"); id != "" {
		applicationID = &id
	}
	fileKind := c.PostForm("fileType")

	mimeType := fileHeader.Header.Get("Content-Type")

	record, err := h.files.UploadFile(c.Request.Context(), data, fileHeader.Filename, mimeType, applicationID, fileKind)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get 获取文件元数据
func (h *FileHandler) Get(c *gin.Context) {
	var file models.File
	if err := h.db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.JSON(http.StatusOK, file)
}

// Download 生成预签名下载链接（需评审令牌）
func (h *FileHandler) Download(c *gin.Context) {
	var file models.File
	if err := h.db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	downloadURL, err := h.files.FileURL(c.Request.Context(), file.S3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}

	c.JSON(http.StatusOK, models.DownloadResponse{DownloadURL: downloadURL})
}

// View 重定向到预签名链接，供 Slack 消息里的作品集链接使用（无需认证）
func (h *FileHandler) View(c *gin.Context) {
	var file models.File
	if err := h.db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	viewURL, err := h.files.FileURL(c.Request.Context(), file.S3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate view URL"})
		return
	}

	c.Redirect(http.StatusFound, viewURL)
}

// Delete 删除文件：对象删除失败时保留元数据行并返回错误
func (h *FileHandler) Delete(c *gin.Context) {
	if _, err := h.files.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	c.Status(http.StatusNoContent)
}
