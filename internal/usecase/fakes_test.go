package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/fadilmartias/interview-coach/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	mu              sync.Mutex
	text            string
	textErr         error
	structured      map[*genai.Schema]any
	structuredErr   map[*genai.Schema]error
	embedding       []float32
	embedErr        error
	textCalls       int
	structuredCalls int
	prompts         []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls++
	f.prompts = append(f.prompts, prompt)
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateStructured(_ context.Context, prompt string, schema *genai.Schema, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.structuredCalls++
	f.prompts = append(f.prompts, prompt)
	if err := f.structuredErr[schema]; err != nil {
		return err
	}
	v, ok := f.structured[schema]
	if !ok {
		return errors.New("unexpected structured call")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeGenerator) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if f.embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return f.embedding, nil
}

func (f *fakeGenerator) modelCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textCalls + f.structuredCalls
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	rows      []model.BehavioralQuestion
	listErr   error
	createErr func(q *model.BehavioralQuestion) error
	// listDelay widens the window between reading a category and writing to it.
	listDelay time.Duration
}

func (r *fakeQuestionRepo) ListByCategory(_ context.Context, category string) ([]model.BehavioralQuestion, error) {
	if r.listDelay > 0 {
		time.Sleep(r.listDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.BehavioralQuestion
	for _, q := range r.rows {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) ListPage(ctx context.Context, category string, offset, limit int) ([]model.BehavioralQuestion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.BehavioralQuestion
	for _, q := range r.rows {
		if category == "" || q.Category == category {
			matched = append(matched, q)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total, nil
}

func (r *fakeQuestionRepo) SearchSimilar(_ context.Context, _ pgvector.Vector, category string, topK int) ([]model.BehavioralQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.BehavioralQuestion
	for _, q := range r.rows {
		if q.Embedding != nil && (category == "" || q.Category == category) && len(out) < topK {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *model.BehavioralQuestion) error {
	if r.createErr != nil {
		if err := r.createErr(q); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	r.rows = append(r.rows, *q)
	return nil
}

func (r *fakeQuestionRepo) count(category string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.rows {
		if q.Category == category {
			n++
		}
	}
	return n
}

func (r *fakeQuestionRepo) seed(category string, questions ...string) {
	for _, q := range questions {
		_ = r.Create(context.Background(), &model.BehavioralQuestion{
			Question:    q,
			QuestionKey: model.NormalizeQuestion(q),
			Answer:      "answer",
			Source:      "source",
			Category:    category,
		})
	}
}

type fakeQueryCache struct {
	mu      sync.Mutex
	entries []model.QueryCache
}

func (c *fakeQueryCache) Create(_ context.Context, entry *model.QueryCache) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, *entry)
	return nil
}

type fakeSearch struct {
	mu      sync.Mutex
	results map[string][]service.SearchResult
	err     error
	queries []string
}

func (s *fakeSearch) Search(_ context.Context, query string, _ int) ([]service.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractResume(string) (string, error) {
	return e.text, e.err
}

func intPtr(v int) *int {
	return &v
}
