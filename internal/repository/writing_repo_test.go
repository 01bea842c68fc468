package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-writing-api/internal/models"
)

func TestCreditRepositoryDeduct(t *testing.T) {
	db := setupWritingTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.UserCredits{UserID: 1, AvailableCredits: 2}).Error)

	credits, err := repo.Deduct(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, credits.AvailableCredits)

	credits, err = repo.Deduct(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 0, credits.AvailableCredits)

	_, err = repo.Deduct(ctx, 1, 1)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	stored, err := repo.GetByUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, stored.AvailableCredits, "balance never goes negative")

	_, err = repo.Deduct(ctx, 99, 1)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCreditRepositoryDeductConcurrentRequestsNeverOverdraw(t *testing.T) {
	db := setupWritingTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Create(&models.UserCredits{UserID: 1, AvailableCredits: 5}).Error)

	const requests = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
		unexpected   []error
	)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Deduct(ctx, 1, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientBalance):
				insufficient++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unexpected)
	require.Equal(t, 5, succeeded)
	require.Equal(t, requests-5, insufficient)

	credits, err := repo.GetByUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, credits.AvailableCredits)
}

func TestCreditRepositoryGrant(t *testing.T) {
	db := setupWritingTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	credits, err := repo.Grant(ctx, 5, 3)
	require.NoError(t, err)
	require.Equal(t, 3, credits.AvailableCredits)

	credits, err = repo.Grant(ctx, 5, 2)
	require.NoError(t, err)
	require.Equal(t, 5, credits.AvailableCredits)

	var count int64
	require.NoError(t, db.Model(&models.UserCredits{}).Where("user_id = ?", 5).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWritingScoreRepositoryLatestByTask(t *testing.T) {
	db := setupWritingTestDB(t)
	repo := NewWritingScoreRepository(db)
	ctx := context.Background()

	now := time.Now()
	older := models.WritingScore{UserID: 1, TaskType: "task1", EssayText: "old", AdjustedScore: 5, CreatedAt: now.Add(-time.Hour)}
	newer := models.WritingScore{UserID: 1, TaskType: "task1", EssayText: "new", AdjustedScore: 6, CreatedAt: now}
	other := models.WritingScore{UserID: 2, TaskType: "task1", EssayText: "other", AdjustedScore: 9, CreatedAt: now.Add(time.Hour)}
	for _, score := range []*models.WritingScore{&newer, &older, &other} {
		require.NoError(t, repo.Create(ctx, score))
	}

	latest, err := repo.LatestByTask(ctx, 1, "task1")
	require.NoError(t, err)
	require.Equal(t, newer.ID, latest.ID)

	_, err = repo.LatestByTask(ctx, 1, "task2")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "new", list[0].EssayText)

	_, err = repo.GetByID(ctx, 1, other.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound, "scores are scoped to their owner")
}

func TestCombinedScoreRepositoryCreateIsIdempotentPerPair(t *testing.T) {
	db := setupWritingTestDB(t)
	scores := NewWritingScoreRepository(db)
	repo := NewCombinedScoreRepository(db)
	ctx := context.Background()

	task1 := models.WritingScore{UserID: 1, TaskType: "task1", EssayText: "a"}
	task2 := models.WritingScore{UserID: 1, TaskType: "task2", EssayText: "b"}
	require.NoError(t, scores.Create(ctx, &task1))
	require.NoError(t, scores.Create(ctx, &task2))

	created, err := repo.Create(ctx, &models.CombinedWritingScore{UserID: 1, Task1ScoreID: task1.ID, Task2ScoreID: task2.ID, CombinedScore: 6.8})
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.Create(ctx, &models.CombinedWritingScore{UserID: 1, Task1ScoreID: task1.ID, Task2ScoreID: task2.ID, CombinedScore: 6.8})
	require.NoError(t, err)
	require.False(t, created)

	exists, err := repo.Exists(ctx, 1, task1.ID, task2.ID)
	require.NoError(t, err)
	require.True(t, exists)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func setupWritingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserCredits{}, &models.WritingScore{}, &models.CombinedWritingScore{}))
	return db
}
