package usecase

import (
	"context"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/prompt"
	"github.com/fadilmartias/interview-coach/internal/response"
	"go.uber.org/zap"
)

type MockEvaluator struct {
	gen    Generator
	logger *zap.Logger
}

func NewMockEvaluator(gen Generator, log *zap.Logger) *MockEvaluator {
	return &MockEvaluator{gen: gen, logger: logger.OrNop(log).Named("mock_evaluator")}
}

// Evaluate grades the answers against the résumé. Scores come from the model as-is.
func (e *MockEvaluator) Evaluate(ctx context.Context, resumeText string, answers []dto.QAPair) response.Result[dto.MockFeedback] {
	p, err := prompt.MockInterview(resumeText, answers)
	if err != nil {
		return response.Fail[dto.MockFeedback]("Mock Interview Evaluation failed: %v", err)
	}

	var feedback dto.MockFeedback
	if err := e.gen.GenerateStructured(ctx, p, mockFeedbackSchema, &feedback); err != nil {
		e.logger.Warn("mock evaluation failed", zap.Error(err))
		return response.Fail[dto.MockFeedback]("Mock Interview Evaluation failed: %v", err)
	}
	return response.Ok(feedback)
}
