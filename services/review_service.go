package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"application-intake/models"
)

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// ApplyReviewUpdate 对申请的 reviewData 做部分更新。
// patch 中缺省的字段不触及已有值，notes 按键做第二层合并，
// 每次更新都重写 lastUpdated。
// 无乐观锁：同一申请并发更新时行级 last-write-wins，属已知取舍。
func (s *ReviewService) ApplyReviewUpdate(ctx context.Context, applicationID string, patch models.ReviewPatch) (*models.Application, error) {
	// 校验先于任何读写
	if err := validateReviewPatch(patch); err != nil {
		return nil, err
	}

	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	data := map[string]interface{}(app.Data)
	if data == nil {
		data = map[string]interface{}{}
	}

	review, err := models.ParseReviewData(data["reviewData"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse review data: %w", err)
	}

	if patch.Rank != nil {
		review.Rank = patch.Rank
	}
	if patch.Status != nil {
		review.Status = *patch.Status
	}
	if patch.UniversityEnrollment != nil {
		review.UniversityEnrollment = *patch.UniversityEnrollment
	}
	if patch.Notes != nil {
		if review.Notes == nil {
			review.Notes = map[string]string{}
		}
		for category, note := range patch.Notes {
			review.Notes[category] = note
		}
	}
	review.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	merged, err := review.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize review data: %w", err)
	}
	data["reviewData"] = merged

	if err := s.db.WithContext(ctx).Model(&app).Update("data", datatypes.JSONMap(data)).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	app.Data = datatypes.JSONMap(data)
	return &app, nil
}

// validateReviewPatch 拒绝枚举之外的值，不做任何静默纠正
func validateReviewPatch(patch models.ReviewPatch) error {
	if patch.Rank != nil && (*patch.Rank < 1 || *patch.Rank > 5) {
		return fmt.Errorf("%w: rank must be between 1 and 5", ErrValidation)
	}
	if patch.Status != nil && !contains(models.ReviewStatuses, *patch.Status) {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, *patch.Status)
	}
	if patch.UniversityEnrollment != nil && !contains(models.EnrollmentAnswers, *patch.UniversityEnrollment) {
		return fmt.Errorf("%w: invalid universityEnrollment %q", ErrValidation, *patch.UniversityEnrollment)
	}
	for category := range patch.Notes {
		if !contains(models.NoteCategories, category) {
			return fmt.Errorf("%w: unknown note category %q", ErrValidation, category)
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
