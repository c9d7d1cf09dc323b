package models

import (
	"time"
)

// File 上传的附件，可后续关联到某份申请
type File struct {
	ID            string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Filename      string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalName  string    `json:"originalName" gorm:"type:varchar(255);not null"`
	MimeType      string    `json:"mimeType" gorm:"type:varchar(100)"`
	Size          int64     `json:"size"`
	S3Key         string    `json:"s3Key" gorm:"type:varchar(500);uniqueIndex"`
	S3Bucket      string    `json:"s3Bucket" gorm:"type:varchar(255)"`
	ApplicationID *string   `json:"applicationId" gorm:"type:varchar(36);index"` // 为空表示已上传但尚未关联申请
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (File) TableName() string {
	return "files"
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}
