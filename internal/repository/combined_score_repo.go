package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-writing-api/internal/models"
)

// CombinedScoreRepository exposes persistence helpers for combined writing scores.
type CombinedScoreRepository interface {
	Exists(ctx context.Context, userID, task1ScoreID, task2ScoreID uint) (bool, error)
	Create(ctx context.Context, score *models.CombinedWritingScore) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.CombinedWritingScore, error)
}

// NewCombinedScoreRepository constructs a combined score repository.
func NewCombinedScoreRepository(db *gorm.DB) CombinedScoreRepository {
	return &combinedScoreRepository{db: db}
}

type combinedScoreRepository struct {
	db *gorm.DB
}

func (r *combinedScoreRepository) Exists(ctx context.Context, userID, task1ScoreID, task2ScoreID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CombinedWritingScore{}).
		Where("user_id = ? AND task1_score_id = ? AND task2_score_id = ?", userID, task1ScoreID, task2ScoreID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the score unless the pair already exists, reporting whether a row was written.
func (r *combinedScoreRepository) Create(ctx context.Context, score *models.CombinedWritingScore) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(score)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected > 0
		return nil
	})
	return created, err
}

func (r *combinedScoreRepository) ListByUser(ctx context.Context, userID uint) ([]models.CombinedWritingScore, error) {
	var scores []models.CombinedWritingScore
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&scores).Error
	return scores, err
}
