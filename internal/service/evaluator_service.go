package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/models"
	"github.com/evalio/evalio-go-api/internal/repository"
)

// ErrEvaluatorNotFound indicates the evaluator cannot be located.
var ErrEvaluatorNotFound = errors.New("evaluator not found")

// ErrEvaluatorForbidden indicates the caller does not own the evaluator.
var ErrEvaluatorForbidden = errors.New("forbidden")

// ErrQuizKindLocked indicates an attempt to change the quiz kind after
// creation. Changing the grading strategy would invalidate existing grades.
var ErrQuizKindLocked = errors.New("quiz kind cannot be changed after creation")

// ErrDeadlineInPast indicates a deadline set before the current time.
var ErrDeadlineInPast = errors.New("deadline cannot be in the past")

// ErrChoiceCountMismatch indicates multiple-choice quiz data whose answer key
// does not cover every question.
var ErrChoiceCountMismatch = errors.New("correct answers must match question count")

// ErrQuizKindRequired indicates an auto-evaluated quiz without a quiz kind.
// Without one the grader cannot pick a strategy.
var ErrQuizKindRequired = errors.New("quiz kind is required when auto evaluation is enabled for a quiz")

// EvaluatorService exposes evaluator management operations.
type EvaluatorService interface {
	Create(ctx context.Context, teacherUsername string, payload dto.EvaluatorCreateRequest) (dto.EvaluatorResponse, error)
	Update(ctx context.Context, id uint, teacherUsername string, payload dto.EvaluatorUpdateRequest) (dto.EvaluatorResponse, error)
	Delete(ctx context.Context, id uint, teacherUsername string) error
	Get(ctx context.Context, id uint) (dto.EvaluatorResponse, error)
	List(ctx context.Context, query dto.EvaluatorListQuery) ([]dto.EvaluatorResponse, dto.ListMeta, error)
	ListMine(ctx context.Context, teacherUsername string) ([]dto.EvaluatorResponse, error)
	ListAutoGraded(ctx context.Context, teacherUsername string) ([]dto.AutoGradedEvaluatorResponse, error)
}

type evaluatorService struct {
	evaluators  repository.EvaluatorRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEvaluatorService constructs an evaluator service.
func NewEvaluatorService(evaluatorRepo repository.EvaluatorRepository, submissionRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) EvaluatorService {
	return &evaluatorService{
		evaluators:  evaluatorRepo,
		submissions: submissionRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "evaluator_service").Logger(),
		now:         time.Now,
	}
}

func (s *evaluatorService) Create(ctx context.Context, teacherUsername string, payload dto.EvaluatorCreateRequest) (dto.EvaluatorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	if payload.Deadline != nil && payload.Deadline.Before(s.now()) {
		return dto.EvaluatorResponse{}, ErrDeadlineInPast
	}

	maxAttempts := payload.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	evaluator := models.Evaluator{
		Title:           strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description:     strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Kind:            payload.Kind,
		SubmissionKind:  payload.SubmissionKind,
		TeacherUsername: teacherUsername,
		AutoEval:        payload.AutoEval,
		QuizKind:        payload.QuizKind,
		QuizData:        dto.QuizDataColumn(payload.QuizData),
		Deadline:        payload.Deadline,
		MaxAttempts:     maxAttempts,
	}

	if err := validateQuizData(evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	if err := s.evaluators.Create(ctx, &evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	s.logger.Info().Uint("evaluator_id", evaluator.ID).Str("teacher", teacherUsername).Str("quiz_kind", evaluator.QuizKind).Msg("evaluator created")

	return dto.NewEvaluatorResponse(evaluator), nil
}

func (s *evaluatorService) Update(ctx context.Context, id uint, teacherUsername string, payload dto.EvaluatorUpdateRequest) (dto.EvaluatorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	evaluator, err := s.ownedEvaluator(ctx, id, teacherUsername)
	if err != nil {
		return dto.EvaluatorResponse{}, err
	}

	if payload.QuizKind != nil && *payload.QuizKind != evaluator.QuizKind {
		// The kind may still change while nobody has submitted; after that a
		// change would invalidate recorded grades.
		count, err := s.submissions.CountByEvaluator(ctx, evaluator.ID)
		if err != nil {
			return dto.EvaluatorResponse{}, err
		}
		if count > 0 {
			return dto.EvaluatorResponse{}, ErrQuizKindLocked
		}
		evaluator.QuizKind = *payload.QuizKind
	}

	if payload.Title != nil {
		evaluator.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Description != nil {
		evaluator.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.AutoEval != nil {
		evaluator.AutoEval = *payload.AutoEval
	}
	if len(payload.QuizData) > 0 {
		evaluator.QuizData = dto.QuizDataColumn(payload.QuizData)
	}
	if payload.Deadline != nil {
		if payload.Deadline.Before(s.now()) {
			return dto.EvaluatorResponse{}, ErrDeadlineInPast
		}
		evaluator.Deadline = payload.Deadline
	}
	if payload.MaxAttempts != nil {
		evaluator.MaxAttempts = *payload.MaxAttempts
	}

	if err := validateQuizData(evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	if err := s.evaluators.Update(ctx, &evaluator); err != nil {
		return dto.EvaluatorResponse{}, err
	}

	return dto.NewEvaluatorResponse(evaluator), nil
}

func (s *evaluatorService) Delete(ctx context.Context, id uint, teacherUsername string) error {
	evaluator, err := s.ownedEvaluator(ctx, id, teacherUsername)
	if err != nil {
		return err
	}

	if err := s.submissions.DeleteByEvaluator(ctx, evaluator.ID); err != nil {
		return err
	}
	if err := s.evaluators.Delete(ctx, evaluator.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("evaluator_id", evaluator.ID).Str("teacher", teacherUsername).Msg("evaluator deleted")

	return nil
}

func (s *evaluatorService) Get(ctx context.Context, id uint) (dto.EvaluatorResponse, error) {
	evaluator, err := s.evaluators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluatorResponse{}, ErrEvaluatorNotFound
		}
		return dto.EvaluatorResponse{}, err
	}

	return dto.NewEvaluatorResponse(evaluator), nil
}

func (s *evaluatorService) List(ctx context.Context, query dto.EvaluatorListQuery) ([]dto.EvaluatorResponse, dto.ListMeta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, dto.ListMeta{}, err
	}

	if query.Limit <= 0 {
		query.Limit = 10
	}

	evaluators, total, err := s.evaluators.List(ctx, repository.EvaluatorFilter{
		Search:   query.Search,
		Kind:     query.Kind,
		QuizKind: query.QuizKind,
		Skip:     query.Skip,
		Limit:    query.Limit,
	})
	if err != nil {
		return nil, dto.ListMeta{}, err
	}

	meta := dto.ListMeta{
		Total:   total,
		Skip:    query.Skip,
		Limit:   query.Limit,
		HasMore: int64(query.Skip+query.Limit) < total,
	}

	return dto.NewEvaluatorResponses(evaluators), meta, nil
}

func (s *evaluatorService) ListMine(ctx context.Context, teacherUsername string) ([]dto.EvaluatorResponse, error) {
	evaluators, err := s.evaluators.ListByTeacher(ctx, teacherUsername)
	if err != nil {
		return nil, err
	}

	return dto.NewEvaluatorResponses(evaluators), nil
}

func (s *evaluatorService) ListAutoGraded(ctx context.Context, teacherUsername string) ([]dto.AutoGradedEvaluatorResponse, error) {
	evaluators, counts, err := s.evaluators.ListAutoGraded(ctx, teacherUsername)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AutoGradedEvaluatorResponse, 0, len(evaluators))
	for _, evaluator := range evaluators {
		entry := dto.AutoGradedEvaluatorResponse{EvaluatorResponse: dto.NewEvaluatorResponse(evaluator)}
		if c, ok := counts[evaluator.ID]; ok {
			entry.SubmissionCount = c.SubmissionCount
			entry.GradedCount = c.GradedCount
		}
		out = append(out, entry)
	}

	return out, nil
}

func (s *evaluatorService) ownedEvaluator(ctx context.Context, id uint, teacherUsername string) (models.Evaluator, error) {
	evaluator, err := s.evaluators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Evaluator{}, ErrEvaluatorNotFound
		}
		return models.Evaluator{}, err
	}
	if evaluator.TeacherUsername != teacherUsername {
		return models.Evaluator{}, ErrEvaluatorForbidden
	}

	return evaluator, nil
}

// validateQuizData checks that quiz configuration is coherent. Auto-evaluated
// quizzes must name a quiz kind, and multiple-choice quizzes must carry one
// correct answer per question.
func validateQuizData(evaluator models.Evaluator) error {
	if evaluator.AutoEval && evaluator.Kind == models.EvaluatorKindQuiz && evaluator.QuizKind == "" {
		return ErrQuizKindRequired
	}

	if evaluator.QuizKind != models.QuizKindMultipleChoice || len(evaluator.QuizData) == 0 {
		return nil
	}

	data, err := evaluator.DecodeMultipleChoice()
	if err != nil {
		return err
	}
	if len(data.CorrectAnswers) == 0 || len(data.CorrectAnswers) != len(data.Questions) {
		return ErrChoiceCountMismatch
	}

	return nil
}
