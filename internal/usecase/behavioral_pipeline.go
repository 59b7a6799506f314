package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/fadilmartias/interview-coach/internal/prompt"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const generatedQuestionCount = 2

// QueryCacheRecorder stores which questions a search query produced;
// *repository.QueryCacheRepository satisfies it.
type QueryCacheRecorder interface {
	Create(ctx context.Context, entry *model.QueryCache) error
}

type BehavioralPipeline struct {
	gen        Generator
	store      *QuestionStore
	queryCache QueryCacheRecorder
	embedder   Embedder
	minCount   int
	logger     *zap.Logger
}

// NewBehavioralPipeline builds the pipeline. queryCache and embedder may be nil.
func NewBehavioralPipeline(gen Generator, store *QuestionStore, queryCache QueryCacheRecorder, embedder Embedder, minCount int, log *zap.Logger) *BehavioralPipeline {
	if minCount <= 0 {
		minCount = 2
	}
	return &BehavioralPipeline{
		gen:        gen,
		store:      store,
		queryCache: queryCache,
		embedder:   embedder,
		minCount:   minCount,
		logger:     logger.OrNop(log).Named("behavioral_pipeline"),
	}
}

// Questions returns behavioral questions for the job description, served from
// the category cache when possible.
func (p *BehavioralPipeline) Questions(ctx context.Context, jobDescription string) response.Result[[]string] {
	category := InferCategory(jobDescription)

	if cached := p.store.GetByCategory(ctx, category); len(cached) > 0 {
		p.logger.Info("serving cached questions", zap.String("category", category), zap.Int("count", len(cached)))
		questions := make([]string, len(cached))
		for i, q := range cached {
			questions[i] = q.Question
		}
		return response.Ok(questions)
	}

	p.logger.Info("no cached questions, generating", zap.String("category", category))

	query, err := p.searchQuery(ctx, jobDescription)
	if err != nil {
		return response.Fail[[]string]("Search query generation failed: %v", err)
	}

	qaPrompt, err := prompt.BehavioralQA(query, generatedQuestionCount)
	if err != nil {
		return response.Fail[[]string]("%v", err)
	}
	var generated dto.GeneratedQuestions
	if err := p.gen.GenerateStructured(ctx, qaPrompt, generatedQuestionsSchema, &generated); err != nil {
		p.logger.Warn("question generation failed", zap.Error(err))
		return response.Fail[[]string]("Unexpected error: %v", err)
	}

	records := make([]model.BehavioralQuestion, len(generated.Questions))
	questions := make([]string, len(generated.Questions))
	for i, q := range generated.Questions {
		records[i] = model.BehavioralQuestion{
			Question: q.Question,
			Answer:   q.Answer,
			Source:   q.Source,
			Category: category,
		}
		questions[i] = q.Question
	}

	p.store.SaveIfNew(ctx, records, p.minCount)
	p.recordQuery(ctx, query, category, questions)

	return response.Ok(questions)
}

func (p *BehavioralPipeline) searchQuery(ctx context.Context, jobDescription string) (string, error) {
	queryPrompt, err := prompt.SearchQuery(jobDescription)
	if err != nil {
		return "", err
	}
	raw, err := p.gen.GenerateText(ctx, queryPrompt)
	if err != nil {
		return "", err
	}

	query := unquote(strings.TrimSpace(raw))
	if query == "" {
		return "", fmt.Errorf("search query generation returned empty")
	}
	p.logger.Debug("generated search query", zap.String("query", query))
	return query, nil
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func (p *BehavioralPipeline) recordQuery(ctx context.Context, query, category string, questions []string) {
	if p.queryCache == nil {
		return
	}
	encoded, err := json.Marshal(questions)
	if err != nil {
		p.logger.Warn("encode query cache entry failed", zap.Error(err))
		return
	}

	entry := &model.QueryCache{
		Query:     query,
		Category:  category,
		Questions: string(encoded),
	}
	if p.embedder != nil {
		if values, err := p.embedder.GenerateEmbedding(ctx, query); err != nil {
			p.logger.Warn("query embedding failed", zap.Error(err))
		} else {
			v := pgvector.NewVector(values)
			entry.Embedding = &v
		}
	}
	if err := p.queryCache.Create(ctx, entry); err != nil {
		p.logger.Warn("record query cache failed", zap.Error(err))
	}
}
