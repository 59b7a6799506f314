package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestResumeEvaluator(t *testing.T) {
	valid := dto.ResumeScore{
		IsValidResume:         true,
		IsValidJobDescription: true,
		Clarity:               intPtr(80),
		Relevance:             intPtr(70),
		Structure:             intPtr(90),
		Experience:            intPtr(4),
		Feedback:              []string{"Quantify impact"},
	}

	tests := []struct {
		name        string
		answer      dto.ResumeScore
		err         error
		wantSuccess bool
		wantMessage string
	}{
		{name: "valid", answer: valid, wantSuccess: true},
		{
			name:        "not a resume",
			answer:      dto.ResumeScore{IsValidResume: false, IsValidJobDescription: true},
			wantMessage: MsgInvalidResume,
		},
		{
			name:        "bad job description",
			answer:      dto.ResumeScore{IsValidResume: true, IsValidJobDescription: false},
			wantMessage: MsgInvalidJobDescription,
		},
		{
			name:        "both invalid",
			answer:      dto.ResumeScore{},
			wantMessage: MsgInvalidBoth,
		},
		{
			name:        "model message wins",
			answer:      dto.ResumeScore{IsValidJobDescription: true, ValidationMessage: "This is a cooking recipe."},
			wantMessage: "This is a cooking recipe.",
		},
		{
			name:        "model error",
			err:         errors.New("deadline exceeded"),
			wantMessage: "Resume analysis failed: deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{
				structured:    map[*genai.Schema]any{resumeScoreSchema: tt.answer},
				structuredErr: map[*genai.Schema]error{resumeScoreSchema: tt.err},
			}
			got := NewResumeEvaluator(gen, nil).Evaluate(context.Background(), "Jane Doe\nGo engineer", "Backend engineer")

			assert.Equal(t, tt.wantSuccess, got.Success)
			assert.Equal(t, tt.wantMessage, got.Message)
			if tt.wantSuccess {
				assert.Equal(t, 80, *got.Data.Clarity)
			}
		})
	}
}

func TestResumeEvaluatorEmptyText(t *testing.T) {
	gen := &fakeGenerator{}
	got := NewResumeEvaluator(gen, nil).Evaluate(context.Background(), "  \n", "Backend engineer")

	assert.False(t, got.Success)
	assert.Equal(t, MsgEmptyResume, got.Message)
	assert.Zero(t, gen.modelCalls())
}
