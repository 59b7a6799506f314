package usecase

import (
	"context"
	"strings"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/prompt"
	"github.com/fadilmartias/interview-coach/internal/response"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

const (
	MsgEmptyResume           = "No content is present in the resume"
	MsgInvalidBoth           = "The uploaded document does not appear to be a valid resume, and the job description is not valid either."
	MsgInvalidResume         = "The uploaded document does not appear to be a valid resume. Please upload your resume or CV."
	MsgInvalidJobDescription = "The job description does not appear to be valid. Please provide a real job description."
)

type ResumeEvaluator struct {
	gen    Generator
	logger *zap.Logger
}

func NewResumeEvaluator(gen Generator, log *zap.Logger) *ResumeEvaluator {
	return &ResumeEvaluator{gen: gen, logger: logger.OrNop(log).Named("resume_evaluator")}
}

// Evaluate validates both documents and scores the résumé against the job description.
func (e *ResumeEvaluator) Evaluate(ctx context.Context, resumeText, jobDescription string) response.Result[dto.ResumeScore] {
	if strings.TrimSpace(resumeText) == "" {
		return response.Fail[dto.ResumeScore]("%s", MsgEmptyResume)
	}

	p, err := prompt.ResumeAnalyzer(resumeText, jobDescription)
	if err != nil {
		return response.Fail[dto.ResumeScore]("%v", err)
	}

	var score dto.ResumeScore
	if err := e.gen.GenerateStructured(ctx, p, resumeScoreSchema, &score); err != nil {
		e.logger.Warn("resume evaluation failed", zap.Error(err))
		return response.Fail[dto.ResumeScore]("Resume analysis failed: %v", err)
	}

	switch {
	case !score.IsValidResume && !score.IsValidJobDescription:
		return response.Fail[dto.ResumeScore]("%s", messageOr(score.ValidationMessage, MsgInvalidBoth))
	case !score.IsValidResume:
		return response.Fail[dto.ResumeScore]("%s", messageOr(score.ValidationMessage, MsgInvalidResume))
	case !score.IsValidJobDescription:
		return response.Fail[dto.ResumeScore]("%s", messageOr(score.ValidationMessage, MsgInvalidJobDescription))
	}
	return response.Ok(score)
}

func messageOr(msg, fallback string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}
