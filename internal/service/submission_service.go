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
	"github.com/evalio/evalio-go-api/internal/grading"
	"github.com/evalio/evalio-go-api/internal/models"
	"github.com/evalio/evalio-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller may not access the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// ErrDeadlinePassed indicates the evaluator deadline has passed.
var ErrDeadlinePassed = errors.New("submission deadline has passed")

// ErrAttemptsExceeded indicates the student used all allowed attempts.
var ErrAttemptsExceeded = errors.New("maximum attempts exceeded")

// ErrNotAutoEvaluable indicates the evaluator is not configured for
// automated grading.
var ErrNotAutoEvaluable = errors.New("evaluator is not auto-evaluable")

// ErrAlreadyGraded indicates a human grade already finalized the submission.
var ErrAlreadyGraded = errors.New("submission already graded")

// ErrBlankContent indicates submission content that is empty after trimming.
var ErrBlankContent = errors.New("submission content cannot be blank")

// Grader scores a submission for its evaluator. grading.Dispatcher is the
// production implementation.
type Grader interface {
	Grade(ctx context.Context, evaluator models.Evaluator, submission models.Submission) (int, string, error)
}

// StatusInvalidator drops any cached status view of a submission.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, submissionID uint)
}

// SubmissionService exposes the submission lifecycle operations.
type SubmissionService interface {
	Submit(ctx context.Context, evaluatorID uint, studentUsername string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	ListByEvaluator(ctx context.Context, evaluatorID uint, teacherUsername string) ([]dto.SubmissionResponse, error)
	ListMine(ctx context.Context, studentUsername string) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, viewer string, role string) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, id uint, teacherUsername string, payload dto.GradeRequest) (dto.SubmissionResponse, error)
	Evaluate(ctx context.Context, id uint, teacherUsername string) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	evaluators  repository.EvaluatorRepository
	grader      Grader
	events      *EventPublisher
	cache       StatusInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a submission service. The cache may be nil
// when status caching is disabled.
func NewSubmissionService(submissionRepo repository.SubmissionRepository, evaluatorRepo repository.EvaluatorRepository, grader Grader, events *EventPublisher, cache StatusInvalidator, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissionRepo,
		evaluators:  evaluatorRepo,
		grader:      grader,
		events:      events,
		cache:       cache,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit records a new attempt. Auto-gradable evaluators are graded inline:
// a malformed payload rejects the attempt without creating a record, a scored
// result lands as auto_graded, and any other grading failure degrades to the
// pending state for teacher review.
func (s *submissionService) Submit(ctx context.Context, evaluatorID uint, studentUsername string, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return dto.SubmissionResponse{}, ErrBlankContent
	}

	evaluator, err := s.evaluators.GetByID(ctx, evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrEvaluatorNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if evaluator.IsPastDeadline(s.now()) {
		return dto.SubmissionResponse{}, ErrDeadlinePassed
	}

	attempts, err := s.submissions.CountByEvaluatorAndStudent(ctx, evaluator.ID, studentUsername)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if attempts >= int64(evaluator.MaxAttempts) {
		return dto.SubmissionResponse{}, ErrAttemptsExceeded
	}

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: studentUsername,
		Content:         content,
		Status:          models.SubmissionStatusSubmitted,
	}

	if evaluator.AutoGradable() {
		score, feedback, gradeErr := s.grader.Grade(ctx, evaluator, submission)
		switch {
		case gradeErr == nil:
			submission.Status = models.SubmissionStatusAutoGraded
			submission.ProvisionalGrade = &score
			submission.Feedback = feedback
		case errors.Is(gradeErr, grading.ErrInvalidFormat):
			return dto.SubmissionResponse{}, gradeErr
		default:
			s.logger.Error().Err(gradeErr).Uint("evaluator_id", evaluator.ID).Msg("auto grading failed, queueing for review")
			submission.Status = models.SubmissionStatusPendingAutoGrade
		}
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.events.PublishGrading(submission)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByEvaluator(ctx context.Context, evaluatorID uint, teacherUsername string) ([]dto.SubmissionResponse, error) {
	evaluator, err := s.evaluators.GetByID(ctx, evaluatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvaluatorNotFound
		}
		return nil, err
	}
	if evaluator.TeacherUsername != teacherUsername {
		return nil, ErrSubmissionForbidden
	}

	submissions, err := s.submissions.ListByEvaluator(ctx, evaluator.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) ListMine(ctx context.Context, studentUsername string) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentUsername)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint, viewer string, role string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetWithEvaluator(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentUsername != viewer && submission.Evaluator.TeacherUsername != viewer && role != "admin" {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Grade records a human grade. It overrides any provisional grade and moves
// the submission to its terminal state.
func (s *submissionService) Grade(ctx context.Context, id uint, teacherUsername string, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.ownedSubmission(ctx, id, teacherUsername)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	grade := payload.Grade
	submission.FinalGrade = &grade
	submission.Status = models.SubmissionStatusGraded
	if feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback)); feedback != "" {
		submission.Feedback = feedback
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidate(ctx, submission.ID)
	s.events.PublishGrading(submission)

	return dto.NewSubmissionResponse(submission), nil
}

// Evaluate re-triggers automated grading for one submission. The operation is
// idempotent: submissions that already hold a provisional or final grade are
// returned unchanged.
func (s *submissionService) Evaluate(ctx context.Context, id uint, teacherUsername string) (dto.SubmissionResponse, error) {
	submission, err := s.ownedSubmission(ctx, id, teacherUsername)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !submission.Evaluator.AutoGradable() {
		return dto.SubmissionResponse{}, ErrNotAutoEvaluable
	}
	if submission.IsGraded() {
		return dto.SubmissionResponse{}, ErrAlreadyGraded
	}
	if submission.HasProvisionalGrade() {
		return dto.NewSubmissionResponse(submission), nil
	}

	score, feedback, gradeErr := s.grader.Grade(ctx, submission.Evaluator, submission)
	switch {
	case gradeErr == nil:
		submission.Status = models.SubmissionStatusAutoGraded
		submission.ProvisionalGrade = &score
		submission.Feedback = feedback
	case errors.Is(gradeErr, grading.ErrInvalidFormat):
		// The stored payload cannot be interpreted; leave it for a teacher.
		submission.Status = models.SubmissionStatusPendingAutoGrade
	default:
		submission.Status = models.SubmissionStatusAutoEvalFailed
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
		s.invalidate(ctx, submission.ID)
		return dto.SubmissionResponse{}, gradeErr
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidate(ctx, submission.ID)
	s.events.PublishGrading(submission)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ownedSubmission(ctx context.Context, id uint, teacherUsername string) (models.Submission, error) {
	submission, err := s.submissions.GetWithEvaluator(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	if submission.Evaluator.TeacherUsername != teacherUsername {
		return models.Submission{}, ErrSubmissionForbidden
	}

	return submission, nil
}

func (s *submissionService) invalidate(ctx context.Context, submissionID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, submissionID)
	}
}
