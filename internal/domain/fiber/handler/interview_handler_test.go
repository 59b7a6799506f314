package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/fadilmartias/interview-coach/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInterviewService struct {
	startDir     string
	startJD      string
	startResult  usecase.StartResult
	submitAnswer []dto.QAPair
	submitResult usecase.EvaluationResult
	submitErr    error
	cleanupErr   error
	info         dto.SessionInfoDTO
	infoErr      error
	questions    []dto.QuestionDTO
	questionsErr error
}

func (f *fakeInterviewService) StartInterview(_ context.Context, sessionID, dir, jd string) (usecase.StartResult, error) {
	f.startDir, f.startJD = dir, jd
	r := f.startResult
	r.SessionID = sessionID
	return r, nil
}

func (f *fakeInterviewService) SubmitAnswers(_ context.Context, _ string, answers []dto.QAPair) (usecase.EvaluationResult, error) {
	f.submitAnswer = answers
	return f.submitResult, f.submitErr
}

func (f *fakeInterviewService) CleanupSession(context.Context, string) error {
	return f.cleanupErr
}

func (f *fakeInterviewService) SessionInfo(context.Context, string) (dto.SessionInfoDTO, error) {
	return f.info, f.infoErr
}

func (f *fakeInterviewService) SearchQuestions(_ context.Context, _, _ string, page, pageSize int) ([]dto.QuestionDTO, *response.Pagination, error) {
	if f.questionsErr != nil {
		return nil, nil, f.questionsErr
	}
	return f.questions, response.NewPagination(page, pageSize, int64(len(f.questions))), nil
}

func newTestApp(t *testing.T, svc InterviewService) (*fiber.App, string) {
	t.Helper()
	uploadDir := t.TempDir()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	NewInterviewHandler(svc, uploadDir, nil).RegisterRoutes(app)
	return app, uploadDir
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func uploadRequest(t *testing.T, filename, jobDescription string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 resume"))
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("job_description", jobDescription))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/run-interview-evaluation", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRunInterviewEvaluation(t *testing.T) {
	svc := &fakeInterviewService{startResult: usecase.StartResult{
		Questions:      response.Ok([]string{"Tell me about an outage"}),
		ResumeAnalysis: response.Fail[dto.ResumeScore]("%s", usecase.MsgInvalidResume),
	}}
	app, uploadDir := newTestApp(t, svc)

	resp, err := app.Test(uploadRequest(t, "cv.pdf", "Backend engineer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"Tell me about an outage"}, body["data"])
	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, map[string]any{"success": false, "message": usecase.MsgInvalidResume}, body["resume_analysis"])

	assert.Equal(t, "Backend engineer", svc.startJD)
	assert.Equal(t, filepath.Join(uploadDir, sessionID), svc.startDir)
	assert.FileExists(t, filepath.Join(svc.startDir, "cv.pdf"))
}

func TestRunInterviewEvaluationQuestionFailure(t *testing.T) {
	svc := &fakeInterviewService{startResult: usecase.StartResult{
		Questions:      response.Fail[[]string]("%s", "Unexpected error: quota"),
		ResumeAnalysis: response.Ok(dto.ResumeScore{IsValidResume: true, IsValidJobDescription: true}),
	}}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(uploadRequest(t, "cv.docx", "Backend engineer"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unexpected error: quota", body["message"])
	assert.NotEmpty(t, body["session_id"])
}

func TestRunInterviewEvaluationRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		jd       string
		want     string
	}{
		{name: "missing file", filename: "", jd: "Backend", want: "resume file is required"},
		{name: "wrong type", filename: "cv.txt", jd: "Backend", want: "unsupported resume file type"},
		{name: "missing job description", filename: "cv.pdf", jd: "  ", want: "job_description is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInterviewService{}
			app, uploadDir := newTestApp(t, svc)

			resp, err := app.Test(uploadRequest(t, tt.filename, tt.jd))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decodeBody(t, resp)["message"], tt.want)
			assert.Empty(t, svc.startDir)

			entries, err := os.ReadDir(uploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestSubmitMockAnswers(t *testing.T) {
	prediction := response.Ok(dto.OutcomePrediction{Score: 72, Feedback: "Work on confidence"})
	svc := &fakeInterviewService{submitResult: usecase.EvaluationResult{
		Feedback: response.Ok(dto.MockFeedback{
			Tone: 80, Confidence: 70, Relevance: 90, TotalMarks: 80,
			Feedback: []string{"Use STAR", "Be concise"},
		}),
		Prediction: &prediction,
	}}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(formRequest("/submit-mock-answers", url.Values{
		"session_id": {"s1"},
		"answers":    {`[{"question":"Why us?","answer":"Because of the mission"}]`},
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	feedback := body["feedback"].(map[string]any)
	assert.Equal(t, float64(80), feedback["total_marks"])
	assert.Equal(t, map[string]any{
		"success": true,
		"data":    map[string]any{"score": float64(72), "feedback": "Work on confidence"},
	}, body["prediction"])
	assert.NotContains(t, body, "improvement_plan")
	assert.Equal(t, []dto.QAPair{{Question: "Why us?", Answer: "Because of the mission"}}, svc.submitAnswer)
}

func TestSubmitMockAnswersErrors(t *testing.T) {
	validAnswers := `[{"question":"q","answer":"a"}]`

	tests := []struct {
		name      string
		answers   string
		infoErr   error
		submitErr error
		wantCode  int
		wantMsg   string
		wantCall  bool
	}{
		{name: "malformed json", answers: `[{"question":`, wantCode: 400, wantMsg: "Invalid JSON format for answers"},
		{name: "schema violation", answers: `[{"question":"q"}]`, wantCode: 400, wantMsg: "Invalid JSON format for answers"},
		{name: "unknown session before answer validation", answers: `[{"question":`, infoErr: usecase.ErrSessionNotFound, wantCode: 400, wantMsg: "Invalid or expired session ID"},
		{name: "unknown session", answers: validAnswers, submitErr: usecase.ErrSessionNotFound, wantCode: 400, wantMsg: "Invalid or expired session ID", wantCall: true},
		{name: "no resume text", answers: validAnswers, submitErr: usecase.ErrMissingResumeText, wantCode: 400, wantMsg: "Resume text not found in session", wantCall: true},
		{name: "pipeline error", answers: validAnswers, submitErr: assert.AnError, wantCode: 500, wantMsg: "Evaluation error", wantCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInterviewService{infoErr: tt.infoErr, submitErr: tt.submitErr}
			app, _ := newTestApp(t, svc)

			resp, err := app.Test(formRequest("/submit-mock-answers", url.Values{
				"session_id": {"s1"},
				"answers":    {tt.answers},
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Contains(t, decodeBody(t, resp)["message"], tt.wantMsg)
			assert.Equal(t, tt.wantCall, svc.submitAnswer != nil)
		})
	}
}

func TestSubmitMockAnswersFeedbackFailure(t *testing.T) {
	svc := &fakeInterviewService{submitResult: usecase.EvaluationResult{
		Feedback: response.Fail[dto.MockFeedback]("%s", "Mock Interview Evaluation failed: timeout"),
	}}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(formRequest("/submit-mock-answers", url.Values{
		"session_id": {"s1"},
		"answers":    {`[{"question":"q","answer":"a"}]`},
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Mock Interview Evaluation failed: timeout", body["message"])
}

func TestSessionEndpoints(t *testing.T) {
	svc := &fakeInterviewService{info: dto.SessionInfoDTO{SessionID: "s1", HasResumeText: true, JobDescriptionLength: 12}}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/session/s1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, true, data["has_resume_text"])
	assert.Equal(t, float64(12), data["job_description_length"])

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/cleanup-session/s1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Session cleaned up successfully", decodeBody(t, resp)["message"])

	svc.infoErr = usecase.ErrSessionNotFound
	svc.cleanupErr = usecase.ErrSessionNotFound

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/session/s1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/cleanup-session/s1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestQuestionsAndHealth(t *testing.T) {
	svc := &fakeInterviewService{questions: []dto.QuestionDTO{{ID: "1", Question: "Q1", Category: "ml"}}}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/questions?category=ml&page=1&page_size=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(5), pagination["page_size"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeBody(t, resp)["status"])
}

func TestQuestionsSearchUnavailable(t *testing.T) {
	svc := &fakeInterviewService{questionsErr: fmt.Errorf("search questions: %w", usecase.ErrSearchUnavailable)}
	app, _ := newTestApp(t, svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/questions?q=conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "question search is unavailable", decodeBody(t, resp)["message"])
}

func TestRunInterviewEvaluationSaveFailureCleansUp(t *testing.T) {
	svc := &fakeInterviewService{}
	uploadDir := t.TempDir()
	h := NewInterviewHandler(svc, uploadDir, nil)
	h.newSessionID = func() string { return "fixed" }
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.RegisterRoutes(app)

	// a directory where the upload should land makes the save fail
	require.NoError(t, os.MkdirAll(filepath.Join(uploadDir, "fixed", "cv.pdf", "inner"), 0o755))

	resp, err := app.Test(uploadRequest(t, "cv.pdf", "Backend engineer"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	assert.NoDirExists(t, filepath.Join(uploadDir, "fixed"))
	assert.Empty(t, svc.startJD)
}
