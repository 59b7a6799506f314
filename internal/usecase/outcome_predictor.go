package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/prompt"
	"github.com/fadilmartias/interview-coach/internal/response"
	"go.uber.org/zap"
)

type OutcomePredictor struct {
	gen    Generator
	logger *zap.Logger
}

func NewOutcomePredictor(gen Generator, log *zap.Logger) *OutcomePredictor {
	return &OutcomePredictor{gen: gen, logger: logger.OrNop(log).Named("outcome_predictor")}
}

func (p *OutcomePredictor) Predict(ctx context.Context, resume response.Result[dto.ResumeScore], mock response.Result[dto.MockFeedback]) response.Result[dto.OutcomePrediction] {
	resumeScore, ok := resume.Get()
	if !ok {
		return response.Fail[dto.OutcomePrediction]("resume analysis unavailable: %s", resume.Message)
	}
	mockScore, ok := mock.Get()
	if !ok {
		return response.Fail[dto.OutcomePrediction]("mock evaluation unavailable: %s", mock.Message)
	}

	resumeAvg, err := resumeAverage(resumeScore)
	if err != nil {
		return response.Fail[dto.OutcomePrediction]("%v", err)
	}
	mockAvg := float64(mockScore.Tone+mockScore.Confidence+mockScore.Relevance) / 3

	resumeJSON, err := json.Marshal(resumeScore)
	if err != nil {
		return response.Fail[dto.OutcomePrediction]("%v", err)
	}
	mockJSON, err := json.Marshal(mockScore)
	if err != nil {
		return response.Fail[dto.OutcomePrediction]("%v", err)
	}

	predictPrompt, err := prompt.Predictor(prompt.PredictorInput{
		ResumeJSON: string(resumeJSON),
		MockJSON:   string(mockJSON),
		ResumeAvg:  resumeAvg,
		MockAvg:    mockAvg,
	})
	if err != nil {
		return response.Fail[dto.OutcomePrediction]("%v", err)
	}

	var outcome dto.OutcomePrediction
	if err := p.gen.GenerateStructured(ctx, predictPrompt, outcomeSchema, &outcome); err != nil {
		p.logger.Warn("outcome prediction failed", zap.Error(err))
		return response.Fail[dto.OutcomePrediction]("Outcome prediction failed: %v", err)
	}

	p.logger.Debug("outcome predicted",
		zap.Float64("resume_avg", resumeAvg),
		zap.Float64("mock_avg", mockAvg),
		zap.Float64("score", outcome.Score),
	)
	return response.Ok(outcome)
}

func resumeAverage(s dto.ResumeScore) (float64, error) {
	scores := map[string]*int{"clarity": s.Clarity, "relevance": s.Relevance, "structure": s.Structure}
	for _, name := range []string{"clarity", "relevance", "structure"} {
		if scores[name] == nil {
			return 0, fmt.Errorf("resume analysis is missing the %s score", name)
		}
	}
	return float64(*s.Clarity+*s.Relevance+*s.Structure) / 3, nil
}
