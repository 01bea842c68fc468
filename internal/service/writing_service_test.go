package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/dto"
	"github.com/noah-isme/gema-writing-api/internal/models"
	"github.com/noah-isme/gema-writing-api/internal/repository"
	"github.com/noah-isme/gema-writing-api/pkg/ai"
	"github.com/noah-isme/gema-writing-api/pkg/ielts"
)

type stubAnalyzer struct {
	calls      int
	assessment ai.Assessment
	err        error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, essay string, task ielts.TaskType) (ai.Assessment, error) {
	s.calls++
	if s.err != nil {
		return ai.Assessment{}, s.err
	}
	assessment := s.assessment
	assessment.Corrections = ielts.ResolvePositions(essay, assessment.Corrections).Normalize()
	return assessment, nil
}

type failingCombinedRepo struct{}

func (failingCombinedRepo) Exists(context.Context, uint, uint, uint) (bool, error) {
	return false, errors.New("combined table unavailable")
}

func (failingCombinedRepo) Create(context.Context, *models.CombinedWritingScore) (bool, error) {
	return false, errors.New("combined table unavailable")
}

func (failingCombinedRepo) ListByUser(context.Context, uint) ([]models.CombinedWritingScore, error) {
	return nil, errors.New("combined table unavailable")
}

type writingFixture struct {
	db       *gorm.DB
	service  WritingService
	combined CombinedScoreService
	analyzer *stubAnalyzer
	cache    *redis.Client
}

func newWritingFixture(t *testing.T, combinedRepo repository.CombinedScoreRepository) writingFixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserCredits{}, &models.WritingScore{}, &models.CombinedWritingScore{}))

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	scores := repository.NewWritingScoreRepository(db)
	if combinedRepo == nil {
		combinedRepo = repository.NewCombinedScoreRepository(db)
	}

	analyzer := &stubAnalyzer{assessment: assessmentWith(6, 7, 6, 6.5)}
	events := NewScoreEventPublisher(nil, nil, "")
	combined := NewCombinedScoreService(scores, combinedRepo, events, zerolog.Nop())
	svc := NewWritingService(
		scores,
		repository.NewCreditRepository(db),
		combined,
		analyzer,
		events,
		cache,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
		WritingServiceConfig{CreditsPerAnalysis: 1, CacheTTL: time.Minute},
	)

	return writingFixture{db: db, service: svc, combined: combined, analyzer: analyzer, cache: cache}
}

func assessmentWith(ta, cc, lr, gr float64) ai.Assessment {
	return ai.Assessment{
		Scores: ielts.BandScores{TaskAchievement: ta, CoherenceCohesion: cc, LexicalResource: lr, GrammaticalRange: gr},
		Feedback: ielts.Feedback{
			TaskAchievement:   "covers the prompt",
			CoherenceCohesion: "clear paragraphs",
			LexicalResource:   "good range",
			GrammaticalRange:  "minor slips",
		},
		Corrections: ielts.Corrections{
			Grammar:   []ielts.Correction{{Original: "word", Correction: "words"}},
			Structure: []ielts.Correction{{Issue: "no conclusion", Suggestion: "add one"}},
		},
	}
}

func essayOf(words int) string {
	return strings.TrimSpace(strings.Repeat("word ", words))
}

func seedCredits(t *testing.T, db *gorm.DB, userID uint, amount int) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserCredits{UserID: userID, AvailableCredits: amount}).Error)
}

func creditsOf(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var credits models.UserCredits
	require.NoError(t, db.Where("user_id = ?", userID).First(&credits).Error)
	return credits.AvailableCredits
}

func countScores(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestWritingServiceScoreAppliesPenalties(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 2)

	spent := 1500
	resp, err := fx.service.Score(context.Background(), 1, dto.WritingScoreRequest{
		EssayText: essayOf(100),
		TaskType:  "task1",
		TimeSpent: &spent,
	})
	require.NoError(t, err)

	require.NotZero(t, resp.ID)
	require.Equal(t, 100, resp.WordCount)
	require.Equal(t, 6.4, resp.OverallScore)
	require.InDelta(t, 1.0, resp.WordCountPenalty, 1e-9)
	require.InDelta(t, 0.5, resp.TimePenalty, 1e-9)
	require.InDelta(t, 4.9, resp.AdjustedScore, 1e-9)
	require.Equal(t, "covers the prompt", resp.TaskAchievementFeedback)
	require.Len(t, resp.Corrections.Grammar[0].Positions, 100)
	require.Nil(t, resp.Corrections.Structure[0].Positions)
	require.NotNil(t, resp.Corrections.Vocabulary)

	require.Equal(t, 1, creditsOf(t, fx.db, 1))
	require.Equal(t, int64(1), countScores(t, fx.db, &models.WritingScore{}))
}

func TestWritingServiceScoreFloorsAdjustedScore(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 1)
	fx.analyzer.assessment = assessmentWith(1, 1, 1.5, 1)

	spent := 5400
	resp, err := fx.service.Score(context.Background(), 1, dto.WritingScoreRequest{EssayText: "too short", TaskType: "task2", TimeSpent: &spent})
	require.NoError(t, err)
	require.Equal(t, 2.0, resp.WordCountPenalty)
	require.Equal(t, 1.0, resp.TimePenalty)
	require.Equal(t, 0.0, resp.AdjustedScore)
}

func TestWritingServiceScoreKeepsDeductionWhenAnalysisFails(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 3)
	fx.analyzer.err = &ai.AnalysisError{Err: errors.New("upstream timeout")}

	_, err := fx.service.Score(context.Background(), 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})

	var analysisErr *ai.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	require.Equal(t, 2, creditsOf(t, fx.db, 1), "deduction is not refunded")
	require.Zero(t, countScores(t, fx.db, &models.WritingScore{}))
}

func TestWritingServiceScorePropagatesValidationErrors(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 1)
	fx.analyzer.err = &ai.ValidationError{Reason: "missing score keys"}

	_, err := fx.service.Score(context.Background(), 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})

	var validationErr *ai.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Zero(t, countScores(t, fx.db, &models.WritingScore{}))
}

func TestWritingServiceScoreRejectsInsufficientCredits(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 0)

	_, err := fx.service.Score(context.Background(), 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.Zero(t, fx.analyzer.calls, "analysis must not run without credits")
}

func TestWritingServiceScoreRequiresLedgerEntry(t *testing.T) {
	fx := newWritingFixture(t, nil)

	_, err := fx.service.Score(context.Background(), 42, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.ErrorIs(t, err, ErrCreditsNotFound)
	require.Zero(t, fx.analyzer.calls)
}

func TestWritingServiceScoreRejectsInvalidInput(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 5)

	cases := []dto.WritingScoreRequest{
		{EssayText: "", TaskType: "task1"},
		{EssayText: "   \n ", TaskType: "task1"},
		{EssayText: "some text", TaskType: "task3"},
		{EssayText: "some text", TaskType: ""},
	}
	for _, payload := range cases {
		_, err := fx.service.Score(context.Background(), 1, payload)
		require.ErrorIs(t, err, ErrInvalidInput, "payload %+v", payload)
	}

	require.Equal(t, 5, creditsOf(t, fx.db, 1))
	require.Zero(t, fx.analyzer.calls)
}

func TestWritingServiceScoreCreatesCombinedScore(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 5)
	ctx := context.Background()

	fx.analyzer.assessment = assessmentWith(6.5, 6.5, 6.5, 6.5)
	task1, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(160), TaskType: "task1"})
	require.NoError(t, err)
	require.Zero(t, countScores(t, fx.db, &models.CombinedWritingScore{}), "no pair yet")

	fx.analyzer.assessment = assessmentWith(7, 7, 7, 7)
	task2, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.NoError(t, err)

	combined, err := fx.combined.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, combined, 1)
	require.Equal(t, task1.ID, combined[0].Task1ScoreID)
	require.Equal(t, task2.ID, combined[0].Task2ScoreID)
	require.Equal(t, 6.8, combined[0].CombinedScore)

	fx.combined.Recalculate(ctx, 1)
	fx.combined.Recalculate(ctx, 1)
	require.Equal(t, int64(1), countScores(t, fx.db, &models.CombinedWritingScore{}), "same pair is recorded once")

	resubmitted, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.NoError(t, err)

	combined, err = fx.combined.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, combined, 2, "a new pair produces a new combined score")
	require.Equal(t, resubmitted.ID, combined[0].Task2ScoreID)
}

func TestWritingServiceScoreSurvivesCombinedFailure(t *testing.T) {
	fx := newWritingFixture(t, failingCombinedRepo{})
	seedCredits(t, fx.db, 1, 2)
	ctx := context.Background()

	_, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(160), TaskType: "task1"})
	require.NoError(t, err)
	_, err = fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.NoError(t, err)

	require.Equal(t, int64(2), countScores(t, fx.db, &models.WritingScore{}))
}

func TestWritingServiceListUsesCacheUntilNextScore(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 2)
	ctx := context.Background()

	_, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(160), TaskType: "task1"})
	require.NoError(t, err)

	first, err := fx.service.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	cached, err := fx.cache.Exists(ctx, scoresCacheKey(1)).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), cached)

	require.NoError(t, fx.db.Model(&models.WritingScore{}).Where("user_id = ?", 1).Update("essay_text", "changed").Error)
	second, err := fx.service.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first[0].EssayText, second[0].EssayText, "cached listing is served")

	_, err = fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(260), TaskType: "task2"})
	require.NoError(t, err)

	third, err := fx.service.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, third, 2)
	require.Equal(t, "task2", third[0].TaskType, "newest first")
}

func TestWritingServiceGetScopesToOwner(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 1)
	ctx := context.Background()

	created, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(160), TaskType: "task1"})
	require.NoError(t, err)

	found, err := fx.service.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Corrections, found.Corrections)

	_, err = fx.service.Get(ctx, 2, created.ID)
	require.ErrorIs(t, err, ErrWritingScoreNotFound)

	_, err = fx.service.Get(ctx, 1, created.ID+100)
	require.ErrorIs(t, err, ErrWritingScoreNotFound)
}

func TestWritingServiceScoreReturnsStoredCorrections(t *testing.T) {
	fx := newWritingFixture(t, nil)
	seedCredits(t, fx.db, 1, 1)
	ctx := context.Background()

	assessment := assessmentWith(6, 6, 6, 6)
	assessment.Corrections.Grammar[0].Extra = map[string]json.RawMessage{"severity": json.RawMessage(`"minor"`)}
	assessment.Corrections.Vocabulary = nil
	fx.analyzer.assessment = assessment

	created, err := fx.service.Score(ctx, 1, dto.WritingScoreRequest{EssayText: essayOf(160), TaskType: "task1"})
	require.NoError(t, err)
	require.NotNil(t, created.Corrections.Vocabulary)
	require.JSONEq(t, `"minor"`, string(created.Corrections.Grammar[0].Extra["severity"]))

	found, err := fx.service.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Corrections, found.Corrections, "response matches the persisted row")
}
