package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/prompt"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/fadilmartias/interview-coach/internal/service"
	"go.uber.org/zap"
)

const maxActionableSteps = 3

type GapFixer struct {
	gen    Generator
	search service.SearchServiceInterface
	logger *zap.Logger
}

func NewGapFixer(gen Generator, search service.SearchServiceInterface, log *zap.Logger) *GapFixer {
	return &GapFixer{gen: gen, search: search, logger: logger.OrNop(log).Named("gap_fixer")}
}

// Plan builds an improvement plan with one learning link per step. A step
// whose search finds nothing fails the whole plan.
func (g *GapFixer) Plan(
	ctx context.Context,
	resume response.Result[dto.ResumeScore],
	mock response.Result[dto.MockFeedback],
	prediction response.Result[dto.OutcomePrediction],
) response.Result[dto.ImprovementPlan] {
	if !resume.Success {
		return response.Fail[dto.ImprovementPlan]("resume analysis unavailable: %s", resume.Message)
	}
	if !mock.Success {
		return response.Fail[dto.ImprovementPlan]("mock evaluation unavailable: %s", mock.Message)
	}
	if !prediction.Success {
		return response.Fail[dto.ImprovementPlan]("outcome prediction unavailable: %s", prediction.Message)
	}

	input, err := gapFixerInput(resume.Data, mock.Data, prediction.Data)
	if err != nil {
		return response.Fail[dto.ImprovementPlan]("%v", err)
	}
	gapPrompt, err := prompt.GapFixer(input)
	if err != nil {
		return response.Fail[dto.ImprovementPlan]("%v", err)
	}

	var draft dto.ImprovementDraft
	if err := g.gen.GenerateStructured(ctx, gapPrompt, improvementDraftSchema, &draft); err != nil {
		g.logger.Warn("improvement plan generation failed", zap.Error(err))
		return response.Fail[dto.ImprovementPlan]("%v", err)
	}

	steps := draft.ActionableSteps
	if len(steps) > maxActionableSteps {
		steps = steps[:maxActionableSteps]
	}

	plan := dto.ImprovementPlan{
		Summary:      draft.OverallSummary,
		Improvements: []string{},
		Links:        []string{},
	}
	for _, step := range steps {
		if strings.TrimSpace(step.Description) == "" || strings.TrimSpace(step.SearchQuery) == "" {
			continue
		}

		link, err := g.firstLink(ctx, step.SearchQuery)
		if err != nil {
			g.logger.Warn("link lookup failed", zap.String("query", step.SearchQuery), zap.Error(err))
			return response.Fail[dto.ImprovementPlan]("%v", err)
		}
		plan.Improvements = append(plan.Improvements, step.Description)
		plan.Links = append(plan.Links, link)
	}

	return response.Ok(plan)
}

func (g *GapFixer) firstLink(ctx context.Context, query string) (string, error) {
	results, err := g.search.Search(ctx, query, 1)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("search %q: %w", query, service.ErrNoSearchResults)
	}
	return results[0].URL, nil
}

func gapFixerInput(resume dto.ResumeScore, mock dto.MockFeedback, prediction dto.OutcomePrediction) (prompt.GapFixerInput, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return prompt.GapFixerInput{}, err
	}
	mockJSON, err := json.Marshal(mock)
	if err != nil {
		return prompt.GapFixerInput{}, err
	}
	predictionJSON, err := json.Marshal(prediction)
	if err != nil {
		return prompt.GapFixerInput{}, err
	}
	return prompt.GapFixerInput{
		ResumeJSON:     string(resumeJSON),
		MockJSON:       string(mockJSON),
		PredictionJSON: string(predictionJSON),
	}, nil
}
