package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// ErrSearchUnavailable is returned by Search when no embedder is configured.
var ErrSearchUnavailable = errors.New("question search unavailable: no embedder configured")

// QuestionRepository is the persistence the question store needs;
// *repository.QuestionRepository satisfies it.
type QuestionRepository interface {
	ListByCategory(ctx context.Context, category string) ([]model.BehavioralQuestion, error)
	ListPage(ctx context.Context, category string, offset, limit int) ([]model.BehavioralQuestion, int64, error)
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, category string, topK int) ([]model.BehavioralQuestion, error)
	Create(ctx context.Context, question *model.BehavioralQuestion) error
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// QuestionStore caches behavioral questions per category. Reads never fail
// and inserts are idempotent within a category.
type QuestionStore struct {
	repo     QuestionRepository
	embedder Embedder
	logger   *zap.Logger

	locks sync.Map // category -> *sync.Mutex
}

// NewQuestionStore builds a store. embedder may be nil, in which case records
// are saved without an embedding and are not found by similarity search.
func NewQuestionStore(repo QuestionRepository, embedder Embedder, log *zap.Logger) *QuestionStore {
	return &QuestionStore{
		repo:     repo,
		embedder: embedder,
		logger:   logger.OrNop(log).Named("question_store"),
	}
}

// GetByCategory returns every record of the category in insertion order.
// Backend errors are logged and reported as an empty result.
func (s *QuestionStore) GetByCategory(ctx context.Context, category string) []model.BehavioralQuestion {
	questions, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Warn("list questions by category failed", zap.String("category", category), zap.Error(err))
		return nil
	}
	return questions
}

// SaveIfNew inserts the records whose normalized question is not yet stored
// in their category. A category that already holds minCount or more records
// is skipped entirely. Records missing any field are ignored and a failed
// insert is logged without aborting the batch. It returns how many records
// were inserted.
func (s *QuestionStore) SaveIfNew(ctx context.Context, records []model.BehavioralQuestion, minCount int) int {
	var categories []string
	byCategory := make(map[string][]model.BehavioralQuestion)
	for _, record := range records {
		if _, seen := byCategory[record.Category]; !seen {
			categories = append(categories, record.Category)
		}
		byCategory[record.Category] = append(byCategory[record.Category], record)
	}

	inserted := 0
	for _, category := range categories {
		inserted += s.saveCategory(ctx, category, byCategory[category], minCount)
	}
	return inserted
}

func (s *QuestionStore) saveCategory(ctx context.Context, category string, records []model.BehavioralQuestion, minCount int) int {
	mu := s.categoryLock(category)
	mu.Lock()
	defer mu.Unlock()

	existing := s.GetByCategory(ctx, category)
	if len(existing) >= minCount {
		s.logger.Debug("category already cached, skipping batch",
			zap.String("category", category),
			zap.Int("existing", len(existing)),
			zap.Int("min_count", minCount),
		)
		return 0
	}

	known := make(map[string]struct{}, len(existing)+len(records))
	for _, q := range existing {
		known[model.NormalizeQuestion(q.Question)] = struct{}{}
	}

	inserted := 0
	for _, record := range records {
		if !isComplete(record) {
			s.logger.Debug("skipping incomplete question", zap.String("category", category))
			continue
		}
		key := model.NormalizeQuestion(record.Question)
		if _, dup := known[key]; dup {
			continue
		}

		row := model.BehavioralQuestion{
			Question:    record.Question,
			QuestionKey: key,
			Answer:      record.Answer,
			Source:      record.Source,
			Category:    category,
			Embedding:   s.embed(ctx, record.Question),
		}
		if err := s.repo.Create(ctx, &row); err != nil {
			s.logger.Warn("insert question failed",
				zap.String("category", category),
				zap.String("question", logger.TruncateForLog(record.Question, 80)),
				zap.Error(err),
			)
			continue
		}
		known[key] = struct{}{}
		inserted++
	}

	if inserted > 0 {
		s.logger.Info("cached behavioral questions", zap.String("category", category), zap.Int("inserted", inserted))
	}
	return inserted
}

// Search returns the records closest to text, optionally within a category.
func (s *QuestionStore) Search(ctx context.Context, text, category string, limit int) ([]model.BehavioralQuestion, error) {
	if s.embedder == nil {
		return nil, ErrSearchUnavailable
	}
	values, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchSimilar(ctx, pgvector.NewVector(values), category, limit)
}

func (s *QuestionStore) List(ctx context.Context, category string, offset, limit int) ([]model.BehavioralQuestion, int64, error) {
	return s.repo.ListPage(ctx, category, offset, limit)
}

func (s *QuestionStore) embed(ctx context.Context, text string) *pgvector.Vector {
	if s.embedder == nil {
		return nil
	}
	values, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		s.logger.Warn("question embedding failed, storing without it", zap.Error(err))
		return nil
	}
	v := pgvector.NewVector(values)
	return &v
}

func (s *QuestionStore) categoryLock(category string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(category, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func isComplete(q model.BehavioralQuestion) bool {
	return strings.TrimSpace(q.Question) != "" &&
		strings.TrimSpace(q.Answer) != "" &&
		strings.TrimSpace(q.Source) != "" &&
		strings.TrimSpace(q.Category) != ""
}
