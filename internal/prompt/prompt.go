// Package prompt renders the model prompts used by the interview pipeline.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/fadilmartias/interview-coach/internal/dto"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return sb.String(), nil
}

func ResumeAnalyzer(resumeText, jobDescription string) (string, error) {
	return render("resume_analyzer.tmpl", map[string]any{
		"ResumeText":     resumeText,
		"JobDescription": jobDescription,
	})
}

func SearchQuery(jobDescription string) (string, error) {
	return render("search_query.tmpl", map[string]any{"JobDescription": jobDescription})
}

// BehavioralQA asks for count question/answer/source triples for query.
func BehavioralQA(query string, count int) (string, error) {
	return render("behavioral_qa.tmpl", map[string]any{"Query": query, "Count": count})
}

func MockInterview(resumeText string, answers []dto.QAPair) (string, error) {
	return render("mock_interview.tmpl", map[string]any{
		"ResumeText": resumeText,
		"Answers":    answers,
	})
}

type PredictorInput struct {
	ResumeJSON string
	MockJSON   string
	ResumeAvg  float64
	MockAvg    float64
}

func Predictor(in PredictorInput) (string, error) {
	return render("predictor.tmpl", in)
}

type GapFixerInput struct {
	ResumeJSON     string
	MockJSON       string
	PredictionJSON string
}

func GapFixer(in GapFixerInput) (string, error) {
	return render("gap_fixer.tmpl", in)
}
