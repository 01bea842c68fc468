package dto

import (
	"time"

	"github.com/noah-isme/gema-writing-api/internal/models"
	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

// WritingScoreRequest is the payload for scoring an essay.
type WritingScoreRequest struct {
	EssayText string `json:"essay_text" validate:"required"`
	TaskType  string `json:"task_type" validate:"required,oneof=task1 task2"`
	TimeSpent *int   `json:"time_spent,omitempty" validate:"omitempty,gte=0"`
}

// WritingScoreResponse represents a scored essay to API consumers.
type WritingScoreResponse struct {
	ID                        uint              `json:"id"`
	UserID                    uint              `json:"user_id"`
	TaskType                  string            `json:"task_type"`
	EssayText                 string            `json:"essay_text"`
	WordCount                 int               `json:"word_count"`
	TimeSpent                 *int              `json:"time_spent"`
	TaskAchievement           float64           `json:"task_achievement"`
	CoherenceCohesion         float64           `json:"coherence_cohesion"`
	LexicalResource           float64           `json:"lexical_resource"`
	GrammaticalRange          float64           `json:"grammatical_range"`
	OverallScore              float64           `json:"overall_score"`
	WordCountPenalty          float64           `json:"word_count_penalty"`
	TimePenalty               float64           `json:"time_penalty"`
	AdjustedScore             float64           `json:"adjusted_score"`
	TaskAchievementFeedback   string            `json:"task_achievement_feedback"`
	CoherenceCohesionFeedback string            `json:"coherence_cohesion_feedback"`
	LexicalResourceFeedback   string            `json:"lexical_resource_feedback"`
	GrammaticalRangeFeedback  string            `json:"grammatical_range_feedback"`
	Corrections               ielts.Corrections `json:"corrections"`
	CreatedAt                 time.Time         `json:"created_at"`
}

// CombinedScoreResponse describes a combined task 1 and task 2 band.
type CombinedScoreResponse struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Task1ScoreID  uint      `json:"task1_score_id"`
	Task2ScoreID  uint      `json:"task2_score_id"`
	CombinedScore float64   `json:"combined_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreditBalanceResponse reports a user's remaining analysis credits.
type CreditBalanceResponse struct {
	UserID           uint      `json:"user_id"`
	AvailableCredits int       `json:"available_credits"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreditGrantRequest tops up a user's ledger.
type CreditGrantRequest struct {
	UserID uint `json:"user_id" validate:"required,gt=0"`
	Amount int  `json:"amount" validate:"required,gt=0"`
}

// NewWritingScoreResponse builds a response DTO from a model, rehydrating its corrections.
func NewWritingScoreResponse(score models.WritingScore) (WritingScoreResponse, error) {
	corrections, err := ielts.DecodeCorrections(score.Corrections)
	if err != nil {
		return WritingScoreResponse{}, err
	}
	return NewWritingScoreResponseWithCorrections(score, corrections), nil
}

// NewWritingScoreResponseWithCorrections builds a response DTO from a model whose corrections
// are already decoded.
func NewWritingScoreResponseWithCorrections(score models.WritingScore, corrections ielts.Corrections) WritingScoreResponse {
	return WritingScoreResponse{
		ID:                        score.ID,
		UserID:                    score.UserID,
		TaskType:                  score.TaskType,
		EssayText:                 score.EssayText,
		WordCount:                 score.WordCount,
		TimeSpent:                 score.TimeSpent,
		TaskAchievement:           score.TaskAchievement,
		CoherenceCohesion:         score.CoherenceCohesion,
		LexicalResource:           score.LexicalResource,
		GrammaticalRange:          score.GrammaticalRange,
		OverallScore:              score.OverallScore,
		WordCountPenalty:          score.WordCountPenalty,
		TimePenalty:               score.TimePenalty,
		AdjustedScore:             score.AdjustedScore,
		TaskAchievementFeedback:   score.TaskAchievementFeedback,
		CoherenceCohesionFeedback: score.CoherenceCohesionFeedback,
		LexicalResourceFeedback:   score.LexicalResourceFeedback,
		GrammaticalRangeFeedback:  score.GrammaticalRangeFeedback,
		Corrections:               corrections,
		CreatedAt:                 score.CreatedAt,
	}
}

// NewWritingScoreResponseSlice converts a list of models into DTOs.
func NewWritingScoreResponseSlice(scores []models.WritingScore) ([]WritingScoreResponse, error) {
	responses := make([]WritingScoreResponse, 0, len(scores))
	for _, score := range scores {
		response, err := NewWritingScoreResponse(score)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// NewCombinedScoreResponse converts a combined score model into a DTO.
func NewCombinedScoreResponse(score models.CombinedWritingScore) CombinedScoreResponse {
	return CombinedScoreResponse{
		ID:            score.ID,
		UserID:        score.UserID,
		Task1ScoreID:  score.Task1ScoreID,
		Task2ScoreID:  score.Task2ScoreID,
		CombinedScore: score.CombinedScore,
		CreatedAt:     score.CreatedAt,
	}
}

// NewCombinedScoreResponseSlice converts combined score models into DTOs.
func NewCombinedScoreResponseSlice(scores []models.CombinedWritingScore) []CombinedScoreResponse {
	responses := make([]CombinedScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, NewCombinedScoreResponse(score))
	}
	return responses
}

// NewCreditBalanceResponse converts a ledger entry into a DTO.
func NewCreditBalanceResponse(credits models.UserCredits) CreditBalanceResponse {
	return CreditBalanceResponse{
		UserID:           credits.UserID,
		AvailableCredits: credits.AvailableCredits,
		UpdatedAt:        credits.UpdatedAt,
	}
}
