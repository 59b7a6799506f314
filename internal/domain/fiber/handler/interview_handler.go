package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/middleware"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/fadilmartias/interview-coach/internal/schemas"
	"github.com/fadilmartias/interview-coach/internal/usecase"
	"github.com/fadilmartias/interview-coach/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResumeSize = 5 * 1024 * 1024

// InterviewService is implemented by *usecase.InterviewUsecase.
type InterviewService interface {
	StartInterview(ctx context.Context, sessionID, dir, jobDescription string) (usecase.StartResult, error)
	SubmitAnswers(ctx context.Context, sessionID string, answers []dto.QAPair) (usecase.EvaluationResult, error)
	CleanupSession(ctx context.Context, sessionID string) error
	SessionInfo(ctx context.Context, sessionID string) (dto.SessionInfoDTO, error)
	SearchQuestions(ctx context.Context, query, category string, page, pageSize int) ([]dto.QuestionDTO, *response.Pagination, error)
}

type InterviewHandler struct {
	uc           InterviewService
	uploadDir    string
	newSessionID func() string
	logger       *zap.Logger
}

func NewInterviewHandler(uc InterviewService, uploadDir string, log *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		uc:           uc,
		uploadDir:    uploadDir,
		newSessionID: uuid.NewString,
		logger:       logger.OrNop(log).Named("http"),
	}
}

func (h *InterviewHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/run-interview-evaluation", middleware.RateLimiter(5, time.Minute), h.RunInterviewEvaluation)
	app.Post("/submit-mock-answers", middleware.RateLimiter(10, time.Minute), h.SubmitMockAnswers)
	app.Delete("/cleanup-session/:id", h.CleanupSession)
	app.Get("/session/:id", h.SessionInfo)
	app.Get("/questions", h.Questions)
	app.Get("/health", h.Health)
}

func (h *InterviewHandler) RunInterviewEvaluation(c *fiber.Ctx) error {
	jobDescription := strings.TrimSpace(c.FormValue("job_description"))
	if jobDescription == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "job_description is required",
		})
	}

	sessionID := h.newSessionID()
	dir, err := h.saveResume(c, sessionID)
	if err != nil {
		return err
	}

	result, err := h.uc.StartInterview(c.UserContext(), sessionID, dir, jobDescription)
	if err != nil {
		h.logger.Error("pipeline execution failed", zap.String("session_id", sessionID), zap.Error(err))
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("Server error: %v", err),
		}, err)
	}

	resp := dto.StartInterviewResponse{
		Success:        result.Questions.Success,
		SessionID:      result.SessionID,
		ResumeAnalysis: result.ResumeAnalysis,
	}
	if result.Questions.Success {
		resp.Data = result.Questions.Data
	} else {
		resp.Message = result.Questions.Message
	}
	return c.JSON(resp)
}

// saveResume stores the upload in a directory named after the session.
func (h *InterviewHandler) saveResume(c *fiber.Ctx, sessionID string) (string, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "resume file is required")
	}
	if file.Size > maxResumeSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "resume file size is too large (max 5MB)")
	}

	filename := filepath.Base(file.Filename)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "unsupported resume file type (use .pdf or .docx)")
	}

	dir := filepath.Join(h.uploadDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot save resume file: %w", err)
	}
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			h.logger.Warn("remove upload dir failed", zap.String("dir", dir), zap.Error(rmErr))
		}
		return "", fmt.Errorf("cannot save resume file: %w", err)
	}
	return dir, nil
}

func (h *InterviewHandler) SubmitMockAnswers(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.FormValue("session_id"))
	rawAnswers := c.FormValue("answers")
	if sessionID == "" || rawAnswers == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "session_id and answers are required",
		})
	}

	// an unknown session is reported before the answers are inspected
	if _, err := h.uc.SessionInfo(c.UserContext(), sessionID); err != nil {
		return h.submitError(c, sessionID, err)
	}

	if err := schemas.ValidateAnswers(rawAnswers); err != nil {
		format := util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid JSON format for answers",
		}
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			format.Details = validationErr.Errors
		}
		return util.ErrorResponse(c, format, err)
	}

	var answers []dto.QAPair
	if err := json.Unmarshal([]byte(rawAnswers), &answers); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid JSON format for answers",
		}, err)
	}

	result, err := h.uc.SubmitAnswers(c.UserContext(), sessionID, answers)
	if err != nil {
		return h.submitError(c, sessionID, err)
	}

	feedback, ok := result.Feedback.Get()
	if !ok {
		return c.JSON(dto.SubmitAnswersResponse{Success: false, Message: result.Feedback.Message})
	}

	resp := dto.SubmitAnswersResponse{Success: true, Feedback: &feedback}
	if result.Prediction != nil {
		resp.Prediction = *result.Prediction
	}
	if result.ImprovementPlan != nil {
		resp.ImprovementPlan = *result.ImprovementPlan
	}
	return c.JSON(resp)
}

func (h *InterviewHandler) submitError(c *fiber.Ctx, sessionID string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid or expired session ID",
		})
	case errors.Is(err, usecase.ErrMissingResumeText):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Resume text not found in session. Please restart the interview process.",
		})
	case errors.Is(err, usecase.ErrNoAnswers):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "answers must not be empty",
		})
	default:
		h.logger.Error("mock interview evaluation failed", zap.String("session_id", sessionID), zap.Error(err))
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("Evaluation error: %v", err),
		}, err)
	}
}

func (h *InterviewHandler) CleanupSession(c *fiber.Ctx) error {
	err := h.uc.CleanupSession(c.UserContext(), c.Params("id"))
	if errors.Is(err, usecase.ErrSessionNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "Session not found",
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: err.Error()}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Session cleaned up successfully",
	})
}

func (h *InterviewHandler) SessionInfo(c *fiber.Ctx) error {
	info, err := h.uc.SessionInfo(c.UserContext(), c.Params("id"))
	if errors.Is(err, usecase.ErrSessionNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "Session not found",
		})
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Message: err.Error()}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: info})
}

func (h *InterviewHandler) Questions(c *fiber.Ctx) error {
	pageSize := c.QueryInt("page_size", 10)
	if pageSize > 100 {
		pageSize = 100
	}
	questions, pagination, err := h.uc.SearchQuestions(
		c.UserContext(),
		c.Query("q"),
		c.Query("category"),
		c.QueryInt("page", 1),
		pageSize,
	)
	if errors.Is(err, usecase.ErrSearchUnavailable) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "question search is unavailable",
		}, err)
	}
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to search questions",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get questions",
		Data:       questions,
		Pagination: pagination,
	})
}

func (h *InterviewHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": "Interview Evaluation API is running",
	})
}
