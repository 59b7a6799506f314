package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/fadilmartias/interview-coach/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var (
	goodResume = response.Ok(dto.ResumeScore{
		IsValidResume:         true,
		IsValidJobDescription: true,
		Clarity:               intPtr(80),
		Relevance:             intPtr(70),
		Structure:             intPtr(90),
	})
	goodMock = response.Ok(dto.MockFeedback{
		Tone:       60,
		Confidence: 70,
		Relevance:  80,
		TotalMarks: 70,
		Feedback:   []string{"Use STAR", "Be concise"},
	})
	goodPrediction = response.Ok(dto.OutcomePrediction{Score: 72, Feedback: "Confidence is lagging"})
)

func TestMockEvaluator(t *testing.T) {
	answers := []dto.QAPair{{Question: "Tell me about a conflict", Answer: "I listened first"}}

	gen := &fakeGenerator{structured: map[*genai.Schema]any{mockFeedbackSchema: goodMock.Data}}
	got := NewMockEvaluator(gen, nil).Evaluate(context.Background(), "resume", answers)
	require.True(t, got.Success)
	assert.Equal(t, goodMock.Data, got.Data)
	assert.Contains(t, gen.lastPrompt(), "I listened first")

	gen = &fakeGenerator{structuredErr: map[*genai.Schema]error{mockFeedbackSchema: errors.New("schema violation")}}
	got = NewMockEvaluator(gen, nil).Evaluate(context.Background(), "resume", answers)
	assert.False(t, got.Success)
	assert.Equal(t, "Mock Interview Evaluation failed: schema violation", got.Message)
}

func TestOutcomePredictor(t *testing.T) {
	gen := &fakeGenerator{structured: map[*genai.Schema]any{outcomeSchema: goodPrediction.Data}}

	got := NewOutcomePredictor(gen, nil).Predict(context.Background(), goodResume, goodMock)

	require.True(t, got.Success, got.Message)
	assert.Equal(t, goodPrediction.Data, got.Data)
	assert.Contains(t, gen.lastPrompt(), "Resume average score: 80.00")
	assert.Contains(t, gen.lastPrompt(), "Mock interview average score: 70.00")
}

func TestOutcomePredictorGuardsInputs(t *testing.T) {
	missingScore := response.Ok(dto.ResumeScore{IsValidResume: true, IsValidJobDescription: true, Clarity: intPtr(50)})

	tests := []struct {
		name   string
		resume response.Result[dto.ResumeScore]
		mock   response.Result[dto.MockFeedback]
		want   string
	}{
		{
			name:   "resume failed",
			resume: response.Fail[dto.ResumeScore]("%s", MsgInvalidResume),
			mock:   goodMock,
			want:   "resume analysis unavailable: " + MsgInvalidResume,
		},
		{
			name:   "mock failed",
			resume: goodResume,
			mock:   response.Fail[dto.MockFeedback]("%s", "timeout"),
			want:   "mock evaluation unavailable: timeout",
		},
		{
			name:   "missing score",
			resume: missingScore,
			mock:   goodMock,
			want:   "resume analysis is missing the relevance score",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			got := NewOutcomePredictor(gen, nil).Predict(context.Background(), tt.resume, tt.mock)

			assert.False(t, got.Success)
			assert.Equal(t, tt.want, got.Message)
			assert.Zero(t, gen.modelCalls())
		})
	}
}

func gapFixerGenerator(steps ...dto.ActionableStep) *fakeGenerator {
	return &fakeGenerator{structured: map[*genai.Schema]any{
		improvementDraftSchema: dto.ImprovementDraft{
			OverallSummary:  "Solid base, work on confidence.",
			ActionableSteps: steps,
		},
	}}
}

func TestGapFixerPlan(t *testing.T) {
	gen := gapFixerGenerator(
		dto.ActionableStep{Description: "Quantify achievements", SearchQuery: "quantify resume achievements"},
		dto.ActionableStep{Description: "", SearchQuery: "ignored"},
		dto.ActionableStep{Description: "Practice STAR", SearchQuery: "STAR method examples"},
		dto.ActionableStep{Description: "Fourth step", SearchQuery: "never searched"},
	)
	search := &fakeSearch{results: map[string][]service.SearchResult{
		"quantify resume achievements": {{URL: "https://example.com/quantify"}, {URL: "https://example.com/other"}},
		"STAR method examples":         {{URL: "https://example.com/star"}},
	}}

	got := NewGapFixer(gen, search, nil).Plan(context.Background(), goodResume, goodMock, goodPrediction)

	require.True(t, got.Success, got.Message)
	assert.Equal(t, "Solid base, work on confidence.", got.Data.Summary)
	assert.Equal(t, []string{"Quantify achievements", "Practice STAR"}, got.Data.Improvements)
	assert.Equal(t, []string{"https://example.com/quantify", "https://example.com/star"}, got.Data.Links)
	assert.Equal(t, []string{"quantify resume achievements", "STAR method examples"}, search.queries)
}

func TestGapFixerFailsWhenAStepHasNoResults(t *testing.T) {
	gen := gapFixerGenerator(
		dto.ActionableStep{Description: "One", SearchQuery: "q1"},
		dto.ActionableStep{Description: "Two", SearchQuery: "q2"},
		dto.ActionableStep{Description: "Three", SearchQuery: "q3"},
	)
	search := &fakeSearch{results: map[string][]service.SearchResult{
		"q1": {{URL: "https://example.com/1"}},
		"q3": {{URL: "https://example.com/3"}},
	}}

	got := NewGapFixer(gen, search, nil).Plan(context.Background(), goodResume, goodMock, goodPrediction)

	assert.False(t, got.Success)
	assert.Contains(t, got.Message, service.ErrNoSearchResults.Error())
	assert.Empty(t, got.Data.Links)
}

func TestGapFixerSearchError(t *testing.T) {
	gen := gapFixerGenerator(dto.ActionableStep{Description: "One", SearchQuery: "q1"})
	search := &fakeSearch{err: errors.New("401 unauthorized")}

	got := NewGapFixer(gen, search, nil).Plan(context.Background(), goodResume, goodMock, goodPrediction)

	assert.False(t, got.Success)
	assert.Contains(t, got.Message, "401 unauthorized")
}

func TestGapFixerGuardsInputs(t *testing.T) {
	gen := &fakeGenerator{}
	search := &fakeSearch{}

	got := NewGapFixer(gen, search, nil).Plan(context.Background(), goodResume, goodMock,
		response.Fail[dto.OutcomePrediction]("%s", "model down"))

	assert.False(t, got.Success)
	assert.Equal(t, "outcome prediction unavailable: model down", got.Message)
	assert.Zero(t, gen.modelCalls())
	assert.Empty(t, search.queries)
}
