package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Application 一份求职申请记录
type Application struct {
	ID          string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string            `json:"name" gorm:"type:varchar(255);not null"`
	Description string            `json:"description" gorm:"type:text"`
	Data        datatypes.JSONMap `json:"data" gorm:"type:json"` // 自由格式文档，reviewData 子对象由评审流程维护
	Files       []File            `json:"files,omitempty" gorm:"foreignKey:ApplicationID"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

func (Application) TableName() string {
	return "applications"
}

type CreateApplicationRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data"`
	FileIDs     []string               `json:"fileIds"`
}

type UpdateApplicationRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Data        map[string]interface{} `json:"data"`
}
