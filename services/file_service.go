package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"application-intake/models"
)

const (
	// 未关联申请的文件所在的命名空间
	unassignedRoot   = "uploads/unassigned"
	applicationsRoot = "applications"

	// 预签名下载链接有效期
	presignExpiry = 24 * time.Hour
)

// 存储 key 中允许嵌入的文件类型标签
var fileKinds = []string{"portfolio", "cv", "cover-letter", "other"}

type FileService struct {
	store  ObjectStore
	bucket string
	db     *gorm.DB
}

func NewFileService(store ObjectStore, bucket string, db *gorm.DB) *FileService {
	return &FileService{
		store:  store,
		bucket: bucket,
		db:     db,
	}
}

// UploadFile 上传文件：先写对象存储，成功后再落库。
// 对象写入失败不会留下孤儿行；落库失败留下的孤儿对象交由离线清理。
func (s *FileService) UploadFile(ctx context.Context, data []byte, filename, mimeType string, applicationID *string, kind string) (*models.File, error) {
	if kind != "" && !isValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown file kind %q", ErrValidation, kind)
	}

	fileID := uuid.New().String()

	root := unassignedRoot
	if applicationID != nil && *applicationID != "" {
		root = fmt.Sprintf("%s/%s", applicationsRoot, *applicationID)
	} else {
		applicationID = nil
	}

	prefix := ""
	if kind != "" {
		prefix = kind + "-"
	}
	s3Key := fmt.Sprintf("%s/%s%s-%s", root, prefix, fileID, filename)

	if err := s.store.PutObject(ctx, s3Key, data, mimeType); err != nil {
		return nil, err
	}

	file := &models.File{
		ID:            fileID,
		Filename:      filename,
		OriginalName:  filename,
		MimeType:      mimeType,
		Size:          int64(len(data)),
		S3Key:         s3Key,
		S3Bucket:      s.bucket,
		ApplicationID: applicationID,
	}

	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		// 对象已写入但元数据落库失败，留下的孤儿对象由离线清理处理
		log.Printf("文件元数据写入失败，遗留孤儿对象 %s: %v", s3Key, err)
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	return file, nil
}

// MoveFileToApplication 把未关联的文件迁移到指定申请的命名空间下。
// 已关联的文件直接返回当前记录，重复调用是无副作用的。
// 顺序约定：copy → delete → 更新行；copy 失败时不做任何删除。
func (s *FileService) MoveFileToApplication(ctx context.Context, fileID, applicationID string) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file record: %w", err)
	}

	if file.ApplicationID != nil {
		return &file, nil
	}

	prefix := ""
	if kind := FileKindFromKey(file.S3Key); kind != "" {
		prefix = kind + "-"
	}
	newKey := fmt.Sprintf("%s/%s/%s%s-%s", applicationsRoot, applicationID, prefix, file.ID, file.OriginalName)

	if err := s.store.CopyObject(ctx, file.S3Key, newKey); err != nil {
		return nil, err
	}

	if err := s.store.RemoveObject(ctx, file.S3Key); err != nil {
		// 拷贝已成功，旧对象删除失败只会多占存储，不回滚
		log.Printf("旧对象删除失败，%s 和 %s 下各有一份副本: %v", file.S3Key, newKey, err)
	}

	updates := map[string]interface{}{
		"s3_key":         newKey,
		"application_id": applicationID,
	}
	if err := s.db.WithContext(ctx).Model(&file).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update file record: %w", err)
	}

	file.S3Key = newKey
	file.ApplicationID = &applicationID
	return &file, nil
}

// FileKindFromKey 从存储 key 的最后一段解析文件类型标签，无匹配返回空串
func FileKindFromKey(key string) string {
	segment := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		segment = key[idx+1:]
	}
	for _, kind := range fileKinds {
		if strings.HasPrefix(segment, kind+"-") {
			return kind
		}
	}
	return ""
}

// DeleteFile 删除文件：先删对象再删行。
// 对象删除失败时整个操作失败，避免留下没有后备对象的悬空记录。
func (s *FileService) DeleteFile(ctx context.Context, fileID string) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file record: %w", err)
	}

	if err := s.store.RemoveObject(ctx, file.S3Key); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(&file).Error; err != nil {
		return nil, fmt.Errorf("failed to delete file record: %w", err)
	}

	return &file, nil
}

// FileURL 生成 24 小时有效的预签名下载链接
func (s *FileService) FileURL(ctx context.Context, key string) (string, error) {
	return s.store.PresignedGetURL(ctx, key, presignExpiry)
}

func isValidKind(kind string) bool {
	for _, k := range fileKinds {
		if k == kind {
			return true
		}
	}
	return false
}
