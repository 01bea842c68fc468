package models

import "time"

// CombinedWritingScore pairs a user's latest task 1 and task 2 scores with their weighted band.
type CombinedWritingScore struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        uint         `gorm:"not null;uniqueIndex:idx_combined_scores_pair" json:"user_id"`
	Task1ScoreID  uint         `gorm:"not null;uniqueIndex:idx_combined_scores_pair" json:"task1_score_id"`
	Task2ScoreID  uint         `gorm:"not null;uniqueIndex:idx_combined_scores_pair" json:"task2_score_id"`
	CombinedScore float64      `gorm:"not null" json:"combined_score"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
	Task1Score    WritingScore `gorm:"foreignKey:Task1ScoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Task2Score    WritingScore `gorm:"foreignKey:Task2ScoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
