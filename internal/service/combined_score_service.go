package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/models"
	"github.com/noah-isme/gema-writing-api/internal/observability"
	"github.com/noah-isme/gema-writing-api/internal/repository"
	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

// CombinedScoreService derives combined bands from a user's latest task 1 and task 2 scores.
type CombinedScoreService interface {
	Recalculate(ctx context.Context, userID uint)
	List(ctx context.Context, userID uint) ([]dto.CombinedScoreResponse, error)
}

type combinedScoreService struct {
	scores   repository.WritingScoreRepository
	combined repository.CombinedScoreRepository
	events   EventPublisher
	logger   zerolog.Logger
}

// NewCombinedScoreService constructs the combined score aggregator.
func NewCombinedScoreService(scores repository.WritingScoreRepository, combined repository.CombinedScoreRepository, events EventPublisher, logger zerolog.Logger) CombinedScoreService {
	return &combinedScoreService{
		scores:   scores,
		combined: combined,
		events:   events,
		logger:   logger.With().Str("component", "combined_score_service").Logger(),
	}
}

// Recalculate records a combined score for the user's newest task pair. Failures are logged
// and never returned.
func (s *combinedScoreService) Recalculate(ctx context.Context, userID uint) {
	record, err := s.recalculate(ctx, userID)
	if err != nil {
		observability.CombinedScoreFailures().Inc()
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to calculate combined score")
		return
	}
	if record == nil {
		return
	}

	observability.CombinedScoresCreated().Inc()
	s.logger.Info().
		Uint("user_id", userID).
		Uint("task1_score_id", record.Task1ScoreID).
		Uint("task2_score_id", record.Task2ScoreID).
		Float64("combined_score", record.CombinedScore).
		Msg("combined score recorded")

	if s.events != nil {
		if err := s.events.Publish(ctx, EventCombinedScoreCreated, dto.NewCombinedScoreResponse(*record)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish combined score event")
		}
	}
}

func (s *combinedScoreService) recalculate(ctx context.Context, userID uint) (*models.CombinedWritingScore, error) {
	task1, err := s.scores.LatestByTask(ctx, userID, string(ielts.Task1))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	task2, err := s.scores.LatestByTask(ctx, userID, string(ielts.Task2))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.combined.Exists(ctx, userID, task1.ID, task2.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	record := models.CombinedWritingScore{
		UserID:        userID,
		Task1ScoreID:  task1.ID,
		Task2ScoreID:  task2.ID,
		CombinedScore: ielts.CombinedScore(task1.AdjustedScore, task2.AdjustedScore),
	}

	created, err := s.combined.Create(ctx, &record)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}

	return &record, nil
}

func (s *combinedScoreService) List(ctx context.Context, userID uint) ([]dto.CombinedScoreResponse, error) {
	scores, err := s.combined.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewCombinedScoreResponseSlice(scores), nil
}
