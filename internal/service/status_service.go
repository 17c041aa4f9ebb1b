package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/repository"
)

// StatusService serves the lightweight submission status view, cached in
// Redis because students poll it while waiting for grades.
type StatusService interface {
	StatusInvalidator
	Status(ctx context.Context, submissionID uint, viewer string, role string) (dto.SubmissionStatusResponse, error)
	ForEvaluator(ctx context.Context, evaluatorID uint, studentUsername string) (dto.EvaluatorStatusResponse, error)
}

type statusService struct {
	submissions repository.SubmissionRepository
	cache       *redis.Client
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewStatusService constructs a status service. A nil Redis client disables
// caching without changing behaviour.
func NewStatusService(submissionRepo repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatusService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &statusService{
		submissions: submissionRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger.With().Str("component", "status_service").Logger(),
	}
}

func statusCacheKey(submissionID uint) string {
	return fmt.Sprintf("evalio:submission_status:%d", submissionID)
}

func (s *statusService) Status(ctx context.Context, submissionID uint, viewer string, role string) (dto.SubmissionStatusResponse, error) {
	submission, err := s.submissions.GetWithEvaluator(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionStatusResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionStatusResponse{}, err
	}

	if submission.StudentUsername != viewer && submission.Evaluator.TeacherUsername != viewer && role != "admin" {
		return dto.SubmissionStatusResponse{}, ErrSubmissionForbidden
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statusCacheKey(submissionID)).Result()
		if err == nil {
			var status dto.SubmissionStatusResponse
			if err := json.Unmarshal([]byte(cached), &status); err == nil {
				return status, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("status cache read failed")
		}
	}

	attempts, err := s.submissions.CountByEvaluatorAndStudent(ctx, submission.EvaluatorID, submission.StudentUsername)
	if err != nil {
		return dto.SubmissionStatusResponse{}, err
	}

	status := dto.SubmissionStatusResponse{
		ID:               submission.ID,
		EvaluatorID:      submission.EvaluatorID,
		Status:           submission.Status,
		ProvisionalGrade: submission.ProvisionalGrade,
		FinalGrade:       submission.FinalGrade,
		Feedback:         submission.Feedback,
		AttemptsUsed:     attempts,
		AttemptsAllowed:  submission.Evaluator.MaxAttempts,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(status); err == nil {
			if err := s.cache.Set(ctx, statusCacheKey(submissionID), payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("status cache write failed")
			}
		}
	}

	return status, nil
}

// ForEvaluator reports the caller's own latest submission state for an
// evaluator. It is keyed on the authenticated identity, so there is no
// further authorization to check, and it is served uncached: the answer
// changes on every new attempt.
func (s *statusService) ForEvaluator(ctx context.Context, evaluatorID uint, studentUsername string) (dto.EvaluatorStatusResponse, error) {
	submission, err := s.submissions.LatestByEvaluatorAndStudent(ctx, evaluatorID, studentUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluatorStatusResponse{Status: "not_submitted"}, nil
		}
		return dto.EvaluatorStatusResponse{}, err
	}

	date := submission.SubmissionDate
	return dto.EvaluatorStatusResponse{
		Status:           submission.Status,
		SubmissionDate:   &date,
		ProvisionalGrade: submission.ProvisionalGrade,
		FinalGrade:       submission.FinalGrade,
		Feedback:         submission.Feedback,
		Grade:            submission.CurrentGrade(),
	}, nil
}

// Invalidate drops the cached view after any state transition.
func (s *statusService) Invalidate(ctx context.Context, submissionID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statusCacheKey(submissionID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("status cache invalidation failed")
	}
}
