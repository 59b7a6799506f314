package repository

import (
	"context"
	"os"
	"testing"

	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB connects to TEST_DATABASE_DSN and migrates; the test is skipped
// when no database is available.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, Migrate(db))
	return db
}

func newQuestion(category, question string, embedding []float32) *model.BehavioralQuestion {
	q := &model.BehavioralQuestion{
		Question:    question,
		QuestionKey: model.NormalizeQuestion(question),
		Answer:      "Answer to " + question,
		Source:      "https://example.com",
		Category:    category,
	}
	if embedding != nil {
		v := pgvector.NewVector(embedding)
		q.Embedding = &v
	}
	return q
}

func unitVector(hot int) []float32 {
	v := make([]float32, 3072)
	v[hot] = 1
	return v
}

func TestQuestionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()

	// unique category per run so reruns do not collide
	category := "it-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Where("category = ?", category).Delete(&model.BehavioralQuestion{})
	})

	require.NoError(t, repo.Create(ctx, newQuestion(category, "Tell me about a conflict", unitVector(0))))
	require.NoError(t, repo.Create(ctx, newQuestion(category, "Describe a failure", unitVector(1))))

	t.Run("duplicate key in category is rejected", func(t *testing.T) {
		err := repo.Create(ctx, newQuestion(category, "  TELL ME ABOUT A CONFLICT ", nil))
		assert.Error(t, err)
	})

	t.Run("list by category keeps insertion order", func(t *testing.T) {
		got, err := repo.ListByCategory(ctx, category)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Tell me about a conflict", got[0].Question)
		assert.Equal(t, "Describe a failure", got[1].Question)
	})

	t.Run("list page", func(t *testing.T) {
		got, total, err := repo.ListPage(ctx, category, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, got, 1)
		assert.Equal(t, "Describe a failure", got[0].Question)
	})

	t.Run("search similar orders by distance", func(t *testing.T) {
		got, err := repo.SearchSimilar(ctx, pgvector.NewVector(unitVector(1)), category, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Describe a failure", got[0].Question)
	})
}

func TestQueryCacheRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQueryCacheRepository(db)

	entry := &model.QueryCache{
		Query:     "behavioral interview questions for backend engineers",
		Category:  "backend",
		Questions: `["Tell me about a conflict"]`,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	t.Cleanup(func() { db.Delete(entry) })

	assert.NotEqual(t, uuid.Nil, entry.ID)
}
