package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/models"
	"github.com/noah-isme/gema-writing-api/internal/observability"
	"github.com/noah-isme/gema-writing-api/internal/repository"
	"github.com/noah-isme/gema-writing-api/pkg/ai"
	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

// ErrInvalidInput indicates a malformed submission.
var ErrInvalidInput = errors.New("invalid input")

// ErrWritingScoreNotFound indicates the score cannot be located for the user.
var ErrWritingScoreNotFound = errors.New("writing score not found")

// WritingService scores essays and exposes a user's score history.
type WritingService interface {
	Score(ctx context.Context, userID uint, payload dto.WritingScoreRequest) (dto.WritingScoreResponse, error)
	List(ctx context.Context, userID uint) ([]dto.WritingScoreResponse, error)
	Get(ctx context.Context, userID, id uint) (dto.WritingScoreResponse, error)
}

// WritingServiceConfig describes scoring knobs.
type WritingServiceConfig struct {
	CreditsPerAnalysis int
	CacheTTL           time.Duration
}

type writingService struct {
	scores    repository.WritingScoreRepository
	credits   repository.CreditRepository
	combined  CombinedScoreService
	analyzer  ai.Analyzer
	events    EventPublisher
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	config    WritingServiceConfig
}

// NewWritingService constructs the essay scoring pipeline.
func NewWritingService(scores repository.WritingScoreRepository, credits repository.CreditRepository, combined CombinedScoreService, analyzer ai.Analyzer, events EventPublisher, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger, cfg WritingServiceConfig) WritingService {
	if cfg.CreditsPerAnalysis <= 0 {
		cfg.CreditsPerAnalysis = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &writingService{
		scores:    scores,
		credits:   credits,
		combined:  combined,
		analyzer:  analyzer,
		events:    events,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "writing_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-writing-api/internal/service/writing"),
		config:    cfg,
	}
}

// Score deducts credits, analyzes the essay, applies penalties and persists the result.
// Credits are spent before analysis and are not refunded when later steps fail.
func (s *writingService) Score(ctx context.Context, userID uint, payload dto.WritingScoreRequest) (dto.WritingScoreResponse, error) {
	ctx, span := s.tracer.Start(ctx, "writing.score", trace.WithAttributes(
		attribute.Int64("writing.user_id", int64(userID)),
	))
	defer span.End()

	task, err := s.validateRequest(payload)
	if err != nil {
		return dto.WritingScoreResponse{}, err
	}
	span.SetAttributes(attribute.String("writing.task_type", string(task)))

	wordCount := ielts.WordCount(payload.EssayText)

	if _, err := s.credits.Deduct(ctx, userID, s.config.CreditsPerAnalysis); err != nil {
		observability.EssaysScored().WithLabelValues(string(task), "credits_rejected").Inc()
		return dto.WritingScoreResponse{}, mapCreditError(err)
	}

	assessment, err := s.analyzer.Analyze(ctx, payload.EssayText, task)
	if err != nil {
		observability.EssaysScored().WithLabelValues(string(task), "analysis_failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.WritingScoreResponse{}, err
	}

	overall := ielts.OverallScore(assessment.Scores)
	wordCountPenalty := ielts.WordCountPenalty(wordCount, task)
	timePenalty := ielts.TimePenalty(payload.TimeSpent, task)
	adjusted := ielts.AdjustedScore(overall, wordCountPenalty, timePenalty)

	stored := assessment.Corrections.Normalize()
	corrections, err := ielts.EncodeCorrections(stored)
	if err != nil {
		return dto.WritingScoreResponse{}, err
	}

	score := models.WritingScore{
		UserID:                    userID,
		TaskType:                  string(task),
		EssayText:                 payload.EssayText,
		WordCount:                 wordCount,
		TimeSpent:                 payload.TimeSpent,
		TaskAchievement:           assessment.Scores.TaskAchievement,
		CoherenceCohesion:         assessment.Scores.CoherenceCohesion,
		LexicalResource:           assessment.Scores.LexicalResource,
		GrammaticalRange:          assessment.Scores.GrammaticalRange,
		OverallScore:              overall,
		WordCountPenalty:          wordCountPenalty,
		TimePenalty:               timePenalty,
		AdjustedScore:             adjusted,
		TaskAchievementFeedback:   assessment.Feedback.TaskAchievement,
		CoherenceCohesionFeedback: assessment.Feedback.CoherenceCohesion,
		LexicalResourceFeedback:   assessment.Feedback.LexicalResource,
		GrammaticalRangeFeedback:  assessment.Feedback.GrammaticalRange,
		Corrections:               corrections,
	}

	if err := s.scores.Create(ctx, &score); err != nil {
		span.RecordError(err)
		return dto.WritingScoreResponse{}, fmt.Errorf("persist writing score: %w", err)
	}

	s.observe(score)
	s.combined.Recalculate(ctx, userID)
	s.invalidateCache(ctx, userID)

	response := dto.NewWritingScoreResponseWithCorrections(score, stored)

	if s.events != nil {
		if err := s.events.Publish(ctx, EventScoreCreated, response); err != nil {
			s.logger.Warn().Err(err).Uint("score_id", score.ID).Msg("failed to publish score event")
		}
	}

	return response, nil
}

func (s *writingService) List(ctx context.Context, userID uint) ([]dto.WritingScoreResponse, error) {
	cacheKey := scoresCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var responses []dto.WritingScoreResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &responses); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("writing scores cache hit")
				return responses, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read writing scores cache")
		}
	}

	scores, err := s.scores.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses, err := dto.NewWritingScoreResponseSlice(scores)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(responses)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.config.CacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store writing scores cache")
			}
		}
	}

	return responses, nil
}

func (s *writingService) Get(ctx context.Context, userID, id uint) (dto.WritingScoreResponse, error) {
	score, err := s.scores.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WritingScoreResponse{}, ErrWritingScoreNotFound
		}
		return dto.WritingScoreResponse{}, err
	}
	return dto.NewWritingScoreResponse(score)
}

func (s *writingService) validateRequest(payload dto.WritingScoreRequest) (ielts.TaskType, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(payload.EssayText) == "" {
		return "", fmt.Errorf("%w: essay text is empty", ErrInvalidInput)
	}

	task := ielts.TaskType(payload.TaskType)
	if !task.Valid() {
		return "", fmt.Errorf("%w: unknown task type %q", ErrInvalidInput, payload.TaskType)
	}
	return task, nil
}

func (s *writingService) observe(score models.WritingScore) {
	observability.EssaysScored().WithLabelValues(score.TaskType, "scored").Inc()
	observability.AdjustedScores().WithLabelValues(score.TaskType).Observe(score.AdjustedScore)
	if score.WordCountPenalty > 0 {
		observability.PenaltiesApplied().WithLabelValues(score.TaskType, "word_count").Inc()
	}
	if score.TimePenalty > 0 {
		observability.PenaltiesApplied().WithLabelValues(score.TaskType, "time").Inc()
	}

	s.logger.Info().
		Uint("score_id", score.ID).
		Uint("user_id", score.UserID).
		Str("task_type", score.TaskType).
		Int("word_count", score.WordCount).
		Float64("overall_score", score.OverallScore).
		Float64("adjusted_score", score.AdjustedScore).
		Msg("essay scored")
}

func (s *writingService) invalidateCache(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, scoresCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate writing scores cache")
	}
}

func scoresCacheKey(userID uint) string {
	return fmt.Sprintf("writing:scores:user:%d", userID)
}
