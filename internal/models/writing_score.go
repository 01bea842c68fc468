package models

import (
	"time"

	"gorm.io/datatypes"
)

// WritingScore is a scored IELTS essay. Rows are written once and never updated.
type WritingScore struct {
	ID                        uint           `gorm:"primaryKey" json:"id"`
	UserID                    uint           `gorm:"not null;index:idx_writing_scores_user_task" json:"user_id"`
	TaskType                  string         `gorm:"size:16;not null;index:idx_writing_scores_user_task" json:"task_type"`
	EssayText                 string         `gorm:"type:text;not null" json:"essay_text"`
	WordCount                 int            `gorm:"not null" json:"word_count"`
	TimeSpent                 *int           `json:"time_spent"`
	TaskAchievement           float64        `gorm:"not null" json:"task_achievement"`
	CoherenceCohesion         float64        `gorm:"not null" json:"coherence_cohesion"`
	LexicalResource           float64        `gorm:"not null" json:"lexical_resource"`
	GrammaticalRange          float64        `gorm:"not null" json:"grammatical_range"`
	OverallScore              float64        `gorm:"not null" json:"overall_score"`
	WordCountPenalty          float64        `gorm:"not null;default:0" json:"word_count_penalty"`
	TimePenalty               float64        `gorm:"not null;default:0" json:"time_penalty"`
	AdjustedScore             float64        `gorm:"not null" json:"adjusted_score"`
	TaskAchievementFeedback   string         `gorm:"type:text" json:"task_achievement_feedback"`
	CoherenceCohesionFeedback string         `gorm:"type:text" json:"coherence_cohesion_feedback"`
	LexicalResourceFeedback   string         `gorm:"type:text" json:"lexical_resource_feedback"`
	GrammaticalRangeFeedback  string         `gorm:"type:text" json:"grammatical_range_feedback"`
	Corrections               datatypes.JSON `json:"corrections"`
	CreatedAt                 time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
}
