package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/models"
)

// ErrInsufficientBalance indicates the ledger holds fewer credits than requested.
var ErrInsufficientBalance = errors.New("insufficient credit balance")

// CreditRepository exposes the analysis credit ledger.
type CreditRepository interface {
	GetByUser(ctx context.Context, userID uint) (models.UserCredits, error)
	Deduct(ctx context.Context, userID uint, amount int) (models.UserCredits, error)
	Grant(ctx context.Context, userID uint, amount int) (models.UserCredits, error)
}

// NewCreditRepository constructs a credit ledger repository.
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

type creditRepository struct {
	db *gorm.DB
}

func (r *creditRepository) GetByUser(ctx context.Context, userID uint) (models.UserCredits, error) {
	var credits models.UserCredits
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&credits).Error; err != nil {
		return models.UserCredits{}, err
	}
	return credits, nil
}

// Deduct decrements the balance only when it covers amount, so concurrent deductions for
// one user can never overdraw. Returns gorm.ErrRecordNotFound when the user has no ledger
// row and ErrInsufficientBalance when the balance is too low.
func (r *creditRepository) Deduct(ctx context.Context, userID uint, amount int) (models.UserCredits, error) {
	var credits models.UserCredits
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserCredits{}).
			Where("user_id = ? AND available_credits >= ?", userID, amount).
			Update("available_credits", gorm.Expr("available_credits - ?", amount))
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("user_id = ?", userID).First(&credits).Error; err != nil {
			return err
		}

		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		return nil
	})
	if err != nil {
		return models.UserCredits{}, err
	}
	return credits, nil
}

func (r *creditRepository) Grant(ctx context.Context, userID uint, amount int) (models.UserCredits, error) {
	var credits models.UserCredits
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&credits).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			credits = models.UserCredits{UserID: userID, AvailableCredits: amount}
			return tx.Create(&credits).Error
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&credits).
			Update("available_credits", gorm.Expr("available_credits + ?", amount)).Error; err != nil {
			return err
		}
		return tx.First(&credits, credits.ID).Error
	})
	if err != nil {
		return models.UserCredits{}, err
	}
	return credits, nil
}
