package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fadilmartias/interview-coach/internal/config"
	"github.com/fadilmartias/interview-coach/internal/dto"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/fadilmartias/interview-coach/internal/pipeline"
	"github.com/fadilmartias/interview-coach/internal/response"
	"github.com/fadilmartias/interview-coach/internal/service"
	"github.com/fadilmartias/interview-coach/internal/session"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = session.ErrNotFound
	ErrMissingResumeText = errors.New("resume text not found in session")
	ErrNoAnswers         = errors.New("no answers submitted")
)

// maxSearchResults bounds how many similarity matches one search ranks.
const maxSearchResults = 1000

const (
	nodeResumeAnalyzer      = "resume_analyzer"
	nodeBehavioralRetriever = "behavioral_retriever"
	nodeMockEvaluator       = "mock_evaluator"
	nodeOutcomePredictor    = "outcome_predictor"
	nodeGapFixer            = "gap_fixer"
)

type ResumeExtractor interface {
	ExtractResume(dir string) (string, error)
}

// GenerationService is what the interview flow needs from the model client.
type GenerationService interface {
	Generator
	Embedder
}

type InterviewDeps struct {
	Generator  GenerationService
	Search     service.SearchServiceInterface
	Extractor  ResumeExtractor
	Questions  QuestionRepository
	QueryCache QueryCacheRecorder
	Sessions   session.Store
	Pipeline   *config.PipelineConfig
	Logger     *zap.Logger
}

type StartResult struct {
	SessionID      string
	Questions      response.Result[[]string]
	ResumeAnalysis response.Result[dto.ResumeScore]
}

type EvaluationResult struct {
	Feedback        response.Result[dto.MockFeedback]
	Prediction      *response.Result[dto.OutcomePrediction]
	ImprovementPlan *response.Result[dto.ImprovementPlan]
}

type InterviewUsecase struct {
	extractor  ResumeExtractor
	resumes    *ResumeEvaluator
	behavioral *BehavioralPipeline
	mock       *MockEvaluator
	predictor  *OutcomePredictor
	gapFixer   *GapFixer
	questions  *QuestionStore
	sessions   session.Store
	fullEval   bool
	intake     *pipeline.Graph
	evaluation *pipeline.Graph
	logger     *zap.Logger
}

func NewInterviewUsecase(deps InterviewDeps) (*InterviewUsecase, error) {
	log := logger.OrNop(deps.Logger)
	pipelineCfg := deps.Pipeline
	if pipelineCfg == nil {
		pipelineCfg = &config.PipelineConfig{Mode: config.PipelineModeFull, QuestionMinCount: 2}
	}

	store := NewQuestionStore(deps.Questions, deps.Generator, log)
	uc := &InterviewUsecase{
		extractor:  deps.Extractor,
		resumes:    NewResumeEvaluator(deps.Generator, log),
		behavioral: NewBehavioralPipeline(deps.Generator, store, deps.QueryCache, deps.Generator, pipelineCfg.QuestionMinCount, log),
		mock:       NewMockEvaluator(deps.Generator, log),
		predictor:  NewOutcomePredictor(deps.Generator, log),
		gapFixer:   NewGapFixer(deps.Generator, deps.Search, log),
		questions:  store,
		sessions:   deps.Sessions,
		fullEval:   pipelineCfg.FullEvaluation(),
		logger:     log.Named("interview"),
	}

	var err error
	if uc.intake, err = uc.buildIntakeGraph(log); err != nil {
		return nil, err
	}
	if uc.evaluation, err = uc.buildEvaluationGraph(log); err != nil {
		return nil, err
	}
	return uc, nil
}

func (uc *InterviewUsecase) buildIntakeGraph(log *zap.Logger) (*pipeline.Graph, error) {
	return pipeline.NewBuilder("intake").
		AddNode(pipeline.Node{
			Name:   nodeResumeAnalyzer,
			Writes: []pipeline.Field{pipeline.FieldResumeText, pipeline.FieldResumeAnalysis},
			Run:    uc.resumeAnalyzerNode,
		}).
		AddNode(pipeline.Node{
			Name:   nodeBehavioralRetriever,
			Writes: []pipeline.Field{pipeline.FieldBehavioralQuestions},
			Run: func(ctx context.Context, s pipeline.State) (pipeline.State, error) {
				r := uc.behavioral.Questions(ctx, s.JobDescription)
				s.BehavioralQuestions = &r
				return s, nil
			},
		}).
		AddEdge(nodeResumeAnalyzer, nodeBehavioralRetriever).
		AddEdge(nodeBehavioralRetriever, pipeline.End).
		Terminal(pipeline.StageAwaitingAnswers).
		Compile(log)
}

func (uc *InterviewUsecase) buildEvaluationGraph(log *zap.Logger) (*pipeline.Graph, error) {
	return pipeline.NewBuilder("evaluation").
		AddNode(pipeline.Node{
			Name:   nodeMockEvaluator,
			Writes: []pipeline.Field{pipeline.FieldMockResponse},
			Run: func(ctx context.Context, s pipeline.State) (pipeline.State, error) {
				r := uc.mock.Evaluate(ctx, s.ResumeText, s.Answers)
				s.MockResponse = &r
				return s, nil
			},
		}).
		AddNode(pipeline.Node{
			Name:   nodeOutcomePredictor,
			Writes: []pipeline.Field{pipeline.FieldSuccessPrediction},
			Run: func(ctx context.Context, s pipeline.State) (pipeline.State, error) {
				r := uc.predictor.Predict(ctx, deref(s.ResumeAnalysis, "resume analysis"), deref(s.MockResponse, "mock evaluation"))
				s.SuccessPrediction = &r
				return s, nil
			},
		}).
		AddNode(pipeline.Node{
			Name:   nodeGapFixer,
			Writes: []pipeline.Field{pipeline.FieldGapFixer},
			Run: func(ctx context.Context, s pipeline.State) (pipeline.State, error) {
				r := uc.gapFixer.Plan(ctx,
					deref(s.ResumeAnalysis, "resume analysis"),
					deref(s.MockResponse, "mock evaluation"),
					deref(s.SuccessPrediction, "outcome prediction"),
				)
				s.GapFixer = &r
				return s, nil
			},
		}).
		AddConditionalEdge(nodeMockEvaluator, routeAfterMock).
		AddEdge(nodeOutcomePredictor, nodeGapFixer).
		AddEdge(nodeGapFixer, pipeline.End).
		Terminal(pipeline.StageCompleted).
		Compile(log)
}

// routeAfterMock continues to the outcome predictor only for a full
// evaluation whose mock grading succeeded.
func routeAfterMock(s pipeline.State) string {
	if s.Stage == pipeline.StageFullEvaluation && s.MockResponse != nil && s.MockResponse.Success {
		return nodeOutcomePredictor
	}
	return pipeline.End
}

func (uc *InterviewUsecase) resumeAnalyzerNode(ctx context.Context, s pipeline.State) (pipeline.State, error) {
	text, err := uc.extractor.ExtractResume(s.FilePath)
	if err != nil {
		uc.logger.Warn("resume extraction failed", zap.String("dir", s.FilePath), zap.Error(err))
		r := response.Fail[dto.ResumeScore]("%v", err)
		s.ResumeAnalysis = &r
		return s, nil
	}

	s.ResumeText = strings.TrimSpace(text)
	r := uc.resumes.Evaluate(ctx, s.ResumeText, s.JobDescription)
	s.ResumeAnalysis = &r
	return s, nil
}

// StartInterview analyses the résumé stored in dir, generates the behavioral
// questions and keeps the state under sessionID for SubmitAnswers.
func (uc *InterviewUsecase) StartInterview(ctx context.Context, sessionID, dir, jobDescription string) (StartResult, error) {
	state, err := uc.intake.Run(ctx, pipeline.State{
		JobDescription: jobDescription,
		FilePath:       dir,
		Stage:          pipeline.StageIntake,
	})
	if err != nil {
		removeUploadDir(dir, uc.logger)
		return StartResult{}, fmt.Errorf("run intake pipeline: %w", err)
	}

	if err := uc.sessions.Save(ctx, sessionID, state); err != nil {
		removeUploadDir(dir, uc.logger)
		return StartResult{}, fmt.Errorf("save session: %w", err)
	}

	uc.logger.Info("interview started",
		zap.String("session_id", sessionID),
		zap.Bool("resume_ok", state.ResumeAnalysis.Success),
		zap.Bool("questions_ok", state.BehavioralQuestions.Success),
	)
	return StartResult{
		SessionID:      sessionID,
		Questions:      *state.BehavioralQuestions,
		ResumeAnalysis: *state.ResumeAnalysis,
	}, nil
}

// SubmitAnswers grades the answers for a started session. Once the answers
// are accepted for grading the session is consumed, whatever the outcome.
func (uc *InterviewUsecase) SubmitAnswers(ctx context.Context, sessionID string, answers []dto.QAPair) (EvaluationResult, error) {
	if len(answers) == 0 {
		return EvaluationResult{}, ErrNoAnswers
	}

	saved, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return EvaluationResult{}, err
	}
	if strings.TrimSpace(saved.ResumeText) == "" {
		return EvaluationResult{}, ErrMissingResumeText
	}

	saved, err = uc.sessions.Take(ctx, sessionID)
	if err != nil {
		return EvaluationResult{}, err
	}
	defer removeUploadDir(saved.FilePath, uc.logger)

	saved.Answers = answers
	saved.Stage = pipeline.StageMockEvaluation
	if uc.fullEval {
		saved.Stage = pipeline.StageFullEvaluation
	}

	state, err := uc.evaluation.Run(ctx, saved)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("run evaluation pipeline: %w", err)
	}

	uc.logger.Info("interview evaluated",
		zap.String("session_id", sessionID),
		zap.Bool("feedback_ok", state.MockResponse.Success),
		zap.Bool("full", uc.fullEval),
	)
	return EvaluationResult{
		Feedback:        *state.MockResponse,
		Prediction:      state.SuccessPrediction,
		ImprovementPlan: state.GapFixer,
	}, nil
}

// CleanupSession drops a session and its uploaded files.
func (uc *InterviewUsecase) CleanupSession(ctx context.Context, sessionID string) error {
	state, err := uc.sessions.Take(ctx, sessionID)
	if err != nil {
		return err
	}
	removeUploadDir(state.FilePath, uc.logger)
	return nil
}

func (uc *InterviewUsecase) SessionInfo(ctx context.Context, sessionID string) (dto.SessionInfoDTO, error) {
	state, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return dto.SessionInfoDTO{}, err
	}
	return dto.SessionInfoDTO{
		SessionID:              sessionID,
		Stage:                  state.Stage.String(),
		HasResumeAnalysis:      state.ResumeAnalysis != nil,
		HasResumeText:          state.ResumeText != "",
		HasBehavioralQuestions: state.BehavioralQuestions != nil,
		JobDescriptionLength:   len(state.JobDescription),
	}, nil
}

// SearchQuestions lists cached questions. With a query the closest matches
// are returned, otherwise the category is paged in insertion order.
func (uc *InterviewUsecase) SearchQuestions(ctx context.Context, query, category string, page, pageSize int) ([]dto.QuestionDTO, *response.Pagination, error) {
	p := response.NewPagination(page, pageSize, 0)

	var rows []model.BehavioralQuestion
	if strings.TrimSpace(query) == "" {
		var total int64
		var err error
		rows, total, err = uc.questions.List(ctx, category, p.Offset(), p.PageSize)
		if err != nil {
			return nil, nil, fmt.Errorf("list questions: %w", err)
		}
		p = response.NewPagination(p.Page, p.PageSize, total)
	} else {
		limit := min(p.Offset()+p.PageSize, maxSearchResults)
		all, err := uc.questions.Search(ctx, query, category, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("search questions: %w", err)
		}
		p = response.NewPagination(p.Page, p.PageSize, int64(len(all)))
		if offset := p.Offset(); offset >= 0 && offset < len(all) {
			rows = all[offset:]
		}
	}

	out := make([]dto.QuestionDTO, len(rows))
	for i, r := range rows {
		out[i] = dto.QuestionDTO{
			ID:       r.ID.String(),
			Question: r.Question,
			Answer:   r.Answer,
			Source:   r.Source,
			Category: r.Category,
		}
	}
	return out, p, nil
}

func deref[T any](r *response.Result[T], name string) response.Result[T] {
	if r == nil {
		return response.Fail[T]("%s was not produced", name)
	}
	return *r
}

func removeUploadDir(dir string, log *zap.Logger) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("remove upload dir failed", zap.String("dir", dir), zap.Error(err))
	}
}
