package usecase

import "google.golang.org/genai"

func scoreSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: description,
		Minimum:     genai.Ptr(0.0),
		Maximum:     genai.Ptr(100.0),
	}
}

var resumeScoreSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_valid_resume":          {Type: genai.TypeBoolean, Description: "Whether the document is a valid resume/CV"},
		"is_valid_job_description": {Type: genai.TypeBoolean, Description: "Whether the job description is valid and relevant"},
		"validation_message":       {Type: genai.TypeString, Description: "Why a document is invalid, if it is", Nullable: genai.Ptr(true)},
		"clarity":                  scoreSchema("Clarity score 0-100, only for a valid resume"),
		"relevance":                scoreSchema("Relevance to the job description 0-100, only for a valid resume"),
		"structure":                scoreSchema("Structure score 0-100, only for a valid resume"),
		"experience":               {Type: genai.TypeInteger, Description: "Years of relevant experience", Minimum: genai.Ptr(0.0)},
		"feedback": {
			Type:        genai.TypeArray,
			Description: "Improvement feedback, only for a valid resume",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required:         []string{"is_valid_resume", "is_valid_job_description"},
	PropertyOrdering: []string{"is_valid_resume", "is_valid_job_description", "validation_message", "clarity", "relevance", "structure", "experience", "feedback"},
}

var generatedQuestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"answer":   {Type: genai.TypeString},
					"source":   {Type: genai.TypeString},
				},
				Required: []string{"question", "answer", "source"},
			},
		},
	},
	Required: []string{"questions"},
}

var mockFeedbackSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tone":       scoreSchema("Tone score out of 100"),
		"confidence": scoreSchema("Confidence score out of 100"),
		"relevance":  scoreSchema("Relevance score out of 100"),
		"total_marks": {
			Type:        genai.TypeNumber,
			Description: "Average of tone, confidence and relevance",
			Minimum:     genai.Ptr(0.0),
			Maximum:     genai.Ptr(100.0),
		},
		"feedback": {
			Type:        genai.TypeArray,
			Description: "2-3 actionable feedback tips",
			Items:       &genai.Schema{Type: genai.TypeString},
			MinItems:    genai.Ptr[int64](2),
			MaxItems:    genai.Ptr[int64](3),
		},
	},
	Required: []string{"tone", "confidence", "relevance", "total_marks", "feedback"},
}

var outcomeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score": {
			Type:        genai.TypeNumber,
			Description: "Overall score based on resume and mock interview",
			Minimum:     genai.Ptr(0.0),
			Maximum:     genai.Ptr(100.0),
		},
		"feedback": {Type: genai.TypeString, Description: "Actionable feedback in one line"},
	},
	Required: []string{"score", "feedback"},
}

var improvementDraftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overall_summary": {Type: genai.TypeString, Description: "Concise summary of the improvement plan"},
		"actionable_steps": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"description":  {Type: genai.TypeString, Description: "A specific, actionable improvement step"},
					"search_query": {Type: genai.TypeString, Description: "A concise web search query for learning resources"},
				},
				Required: []string{"description", "search_query"},
			},
		},
	},
	Required: []string{"overall_summary", "actionable_steps"},
}
