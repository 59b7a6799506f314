package dto

// ResumeScore is the résumé evaluator's structured answer. Scores are only
// present when both documents were judged valid.
type ResumeScore struct {
	IsValidResume         bool     `json:"is_valid_resume"`
	IsValidJobDescription bool     `json:"is_valid_job_description"`
	ValidationMessage     string   `json:"validation_message,omitempty"`
	Clarity               *int     `json:"clarity,omitempty" validate:"omitempty,min=0,max=100"`
	Relevance             *int     `json:"relevance,omitempty" validate:"omitempty,min=0,max=100"`
	Structure             *int     `json:"structure,omitempty" validate:"omitempty,min=0,max=100"`
	Experience            *int     `json:"experience,omitempty" validate:"omitempty,min=0"`
	Feedback              []string `json:"feedback,omitempty"`
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeneratedQuestion is one extracted behavioral question with a sample answer.
type GeneratedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

type GeneratedQuestions struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type MockFeedback struct {
	Tone       int      `json:"tone" validate:"min=0,max=100"`
	Confidence int      `json:"confidence" validate:"min=0,max=100"`
	Relevance  int      `json:"relevance" validate:"min=0,max=100"`
	TotalMarks float64  `json:"total_marks" validate:"min=0,max=100"`
	Feedback   []string `json:"feedback" validate:"min=2,max=3"`
}

type OutcomePrediction struct {
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Feedback string  `json:"feedback" validate:"required"`
}

type ActionableStep struct {
	Description string `json:"description"`
	SearchQuery string `json:"search_query"`
}

// ImprovementDraft is the gap fixer's raw model answer, before link lookup.
type ImprovementDraft struct {
	OverallSummary  string           `json:"overall_summary" validate:"required"`
	ActionableSteps []ActionableStep `json:"actionable_steps"`
}

type ImprovementPlan struct {
	Summary      string   `json:"summary"`
	Improvements []string `json:"improvements"`
	Links        []string `json:"links"`
}

type QuestionDTO struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

type SessionInfoDTO struct {
	SessionID              string `json:"session_id"`
	Stage                  string `json:"stage"`
	HasResumeAnalysis      bool   `json:"has_resume_analysis"`
	HasResumeText          bool   `json:"has_resume_text"`
	HasBehavioralQuestions bool   `json:"has_behavioral_questions"`
	JobDescriptionLength   int    `json:"job_description_length"`
}

type StartInterviewResponse struct {
	Success        bool     `json:"success"`
	Data           []string `json:"data,omitempty"`
	Message        string   `json:"message,omitempty"`
	SessionID      string   `json:"session_id"`
	ResumeAnalysis any      `json:"resume_analysis"`
}

type SubmitAnswersResponse struct {
	Success         bool          `json:"success"`
	Feedback        *MockFeedback `json:"feedback,omitempty"`
	Message         string        `json:"message,omitempty"`
	Prediction      any           `json:"prediction,omitempty"`
	ImprovementPlan any           `json:"improvement_plan,omitempty"`
}
