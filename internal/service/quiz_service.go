package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/grading"
	"github.com/evalio/evalio-go-api/internal/models"
	"github.com/evalio/evalio-go-api/internal/repository"
)

// QuizGenerator produces quizzes. grading.Grader is the production
// implementation; generation never fails thanks to the template fallback.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, req grading.QuizRequest) grading.GeneratedQuiz
}

// QuizService generates quizzes and turns them into evaluators.
type QuizService interface {
	Generate(ctx context.Context, payload dto.QuizGenerationRequest) (grading.GeneratedQuiz, error)
	CreateEvaluator(ctx context.Context, teacherUsername string, quiz grading.GeneratedQuiz) (dto.EvaluatorResponse, error)
}

type quizService struct {
	generator  QuizGenerator
	evaluators repository.EvaluatorRepository
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewQuizService constructs a quiz service.
func NewQuizService(generator QuizGenerator, evaluatorRepo repository.EvaluatorRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		generator:  generator,
		evaluators: evaluatorRepo,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "quiz_service").Logger(),
	}
}

func (s *quizService) Generate(ctx context.Context, payload dto.QuizGenerationRequest) (grading.GeneratedQuiz, error) {
	if err := s.validator.Struct(payload); err != nil {
		return grading.GeneratedQuiz{}, err
	}

	req := grading.QuizRequest{
		Language:           strings.ToLower(strings.TrimSpace(payload.Language)),
		Difficulty:         payload.Difficulty,
		QuestionCount:      payload.QuestionCount,
		IncludeMCQ:         true,
		IncludeTheoretical: true,
		Topic:              payload.Topic,
	}
	if req.Difficulty == "" {
		req.Difficulty = "intermediate"
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = 10
	}
	if payload.IncludeMCQ != nil {
		req.IncludeMCQ = *payload.IncludeMCQ
	}
	if payload.IncludeTheoretical != nil {
		req.IncludeTheoretical = *payload.IncludeTheoretical
	}

	return s.generator.GenerateQuiz(ctx, req), nil
}

// CreateEvaluator persists a generated quiz as an auto-graded open-ended
// evaluator so students can take it immediately.
func (s *quizService) CreateEvaluator(ctx context.Context, teacherUsername string, quiz grading.GeneratedQuiz) (dto.EvaluatorResponse, error) {
	if len(quiz.Questions) == 0 {
		return dto.EvaluatorResponse{}, fmt.Errorf("quiz has no questions")
	}

	quizData, err := json.Marshal(quiz)
	if err != nil {
		return dto.EvaluatorResponse{}, fmt.Errorf("encode quiz data: %w", err)
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(quiz.Description))
	if description == "" {
		description = fmt.Sprintf("Generated %s quiz with %d questions.", quiz.Language, len(quiz.Questions))
	}

	evaluator := models.Evaluator{
		Title:           strings.TrimSpace(s.sanitizer.Sanitize(quiz.Title)),
		Description:     description,
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: teacherUsername,
		AutoEval:        true,
		QuizKind:        models.QuizKindOpenEnded,
		QuizData:        datatypes.JSON(quizData),
		MaxAttempts:     3,
	}

	if err := s.evaluators.Create(ctx, &evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	s.logger.Info().Uint("evaluator_id", evaluator.ID).Str("teacher", teacherUsername).Str("language", quiz.Language).Msg("quiz evaluator created")

	return dto.NewEvaluatorResponse(evaluator), nil
}
