package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/models"
)

// WritingScoreRepository exposes persistence helpers for scored essays.
type WritingScoreRepository interface {
	Create(ctx context.Context, score *models.WritingScore) error
	GetByID(ctx context.Context, userID, id uint) (models.WritingScore, error)
	ListByUser(ctx context.Context, userID uint) ([]models.WritingScore, error)
	LatestByTask(ctx context.Context, userID uint, taskType string) (models.WritingScore, error)
}

// NewWritingScoreRepository constructs a writing score repository.
func NewWritingScoreRepository(db *gorm.DB) WritingScoreRepository {
	return &writingScoreRepository{db: db}
}

type writingScoreRepository struct {
	db *gorm.DB
}

func (r *writingScoreRepository) Create(ctx context.Context, score *models.WritingScore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(score).Error
	})
}

func (r *writingScoreRepository) GetByID(ctx context.Context, userID, id uint) (models.WritingScore, error) {
	var score models.WritingScore
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&score).Error
	if err != nil {
		return models.WritingScore{}, err
	}
	return score, nil
}

func (r *writingScoreRepository) ListByUser(ctx context.Context, userID uint) ([]models.WritingScore, error) {
	var scores []models.WritingScore
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&scores).Error
	return scores, err
}

func (r *writingScoreRepository) LatestByTask(ctx context.Context, userID uint, taskType string) (models.WritingScore, error) {
	var score models.WritingScore
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_type = ?", userID, taskType).
		Order("created_at DESC").
		Order("id DESC").
		First(&score).Error
	if err != nil {
		return models.WritingScore{}, err
	}
	return score, nil
}
