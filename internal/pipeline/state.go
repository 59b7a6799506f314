package pipeline

import (
	"slices"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/response"
)

// Field names a node-written part of State.
type Field string

const (
	FieldResumeText          Field = "resume_text"
	FieldResumeAnalysis      Field = "resume_analysis"
	FieldBehavioralQuestions Field = "behavioral_questions"
	FieldMockResponse        Field = "mock_response"
	FieldSuccessPrediction   Field = "success_prediction"
	FieldGapFixer            Field = "gap_fixer"
)

// State is threaded through a graph. Inputs (JobDescription, FilePath,
// Answers) are set by the caller; every result field is written at most once
// by the node that declares it.
type State struct {
	ResumeText     string       `json:"resume_text,omitempty"`
	JobDescription string       `json:"job_description"`
	FilePath       string       `json:"file_path"`
	Answers        []dto.QAPair `json:"answers,omitempty"`
	Stage          Stage        `json:"stage"`

	ResumeAnalysis      *response.Result[dto.ResumeScore]       `json:"resume_analysis,omitempty"`
	BehavioralQuestions *response.Result[[]string]              `json:"behavioral_questions,omitempty"`
	MockResponse        *response.Result[dto.MockFeedback]      `json:"mock_response,omitempty"`
	SuccessPrediction   *response.Result[dto.OutcomePrediction] `json:"success_prediction,omitempty"`
	GapFixer            *response.Result[dto.ImprovementPlan]   `json:"gap_fixer,omitempty"`
}

// written reports which node-owned fields are already set.
func (s State) written() map[Field]bool {
	return map[Field]bool{
		FieldResumeText:          s.ResumeText != "",
		FieldResumeAnalysis:      s.ResumeAnalysis != nil,
		FieldBehavioralQuestions: s.BehavioralQuestions != nil,
		FieldMockResponse:        s.MockResponse != nil,
		FieldSuccessPrediction:   s.SuccessPrediction != nil,
		FieldGapFixer:            s.GapFixer != nil,
	}
}

// changedFields lists the fields that differ between s and next, inputs included.
func (s State) changedFields(next State) []Field {
	var changed []Field
	if s.ResumeText != next.ResumeText {
		changed = append(changed, FieldResumeText)
	}
	if s.ResumeAnalysis != next.ResumeAnalysis {
		changed = append(changed, FieldResumeAnalysis)
	}
	if s.BehavioralQuestions != next.BehavioralQuestions {
		changed = append(changed, FieldBehavioralQuestions)
	}
	if s.MockResponse != next.MockResponse {
		changed = append(changed, FieldMockResponse)
	}
	if s.SuccessPrediction != next.SuccessPrediction {
		changed = append(changed, FieldSuccessPrediction)
	}
	if s.GapFixer != next.GapFixer {
		changed = append(changed, FieldGapFixer)
	}
	if s.JobDescription != next.JobDescription {
		changed = append(changed, "job_description")
	}
	if s.FilePath != next.FilePath {
		changed = append(changed, "file_path")
	}
	if !slices.Equal(s.Answers, next.Answers) {
		changed = append(changed, "answers")
	}
	if s.Stage != next.Stage {
		changed = append(changed, "stage")
	}
	return changed
}
