package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/evalio/evalio-go-api/internal/models"
)

func newStatusFixture(t *testing.T) (StatusService, *stubEvaluatorRepo, *stubSubmissionRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	evaluators := newStubEvaluatorRepo()
	submissions := newStubSubmissionRepo(evaluators)
	svc := NewStatusService(submissions, client, time.Minute, zerolog.Nop())
	return svc, evaluators, submissions, mr
}

func TestStatusReturnsAttemptCounts(t *testing.T) {
	svc, evaluators, submissions, _ := newStatusFixture(t)
	evaluator := seedAutoEvaluator(t, evaluators)

	grade := 70
	submission := models.Submission{
		EvaluatorID:      evaluator.ID,
		StudentUsername:  "alice",
		Content:          "answer",
		Status:           models.SubmissionStatusAutoGraded,
		ProvisionalGrade: &grade,
		Feedback:         "solid work",
	}
	require.NoError(t, submissions.Create(context.Background(), &submission))

	status, err := svc.Status(context.Background(), submission.ID, "alice", "student")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAutoGraded, status.Status)
	require.Equal(t, 70, *status.ProvisionalGrade)
	require.Equal(t, int64(1), status.AttemptsUsed)
	require.Equal(t, evaluator.MaxAttempts, status.AttemptsAllowed)
}

func TestStatusServesFromCache(t *testing.T) {
	svc, evaluators, submissions, _ := newStatusFixture(t)
	evaluator := seedAutoEvaluator(t, evaluators)

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "answer",
		Status:          models.SubmissionStatusSubmitted,
	}
	require.NoError(t, submissions.Create(context.Background(), &submission))

	first, err := svc.Status(context.Background(), submission.ID, "alice", "student")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, first.Status)

	// Mutate the store behind the cache; the stale view must be served
	// until invalidation.
	stored := submissions.submissions[submission.ID]
	stored.Status = models.SubmissionStatusAutoGraded
	require.NoError(t, submissions.Update(context.Background(), &stored))

	cached, err := svc.Status(context.Background(), submission.ID, "alice", "student")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, cached.Status)

	svc.Invalidate(context.Background(), submission.ID)

	fresh, err := svc.Status(context.Background(), submission.ID, "alice", "student")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAutoGraded, fresh.Status)
}

func TestStatusEnforcesVisibility(t *testing.T) {
	svc, evaluators, submissions, _ := newStatusFixture(t)
	evaluator := seedAutoEvaluator(t, evaluators)

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "answer",
		Status:          models.SubmissionStatusSubmitted,
	}
	require.NoError(t, submissions.Create(context.Background(), &submission))

	_, err := svc.Status(context.Background(), submission.ID, "mallory", "student")
	require.ErrorIs(t, err, ErrSubmissionForbidden)

	_, err = svc.Status(context.Background(), submission.ID, "teacher1", "teacher")
	require.NoError(t, err)
}

func TestStatusUnknownSubmission(t *testing.T) {
	svc, _, _, _ := newStatusFixture(t)

	_, err := svc.Status(context.Background(), 404, "alice", "student")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestStatusForEvaluator(t *testing.T) {
	svc, evaluators, submissions, _ := newStatusFixture(t)
	evaluator := seedAutoEvaluator(t, evaluators)

	status, err := svc.ForEvaluator(context.Background(), evaluator.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "not_submitted", status.Status)
	require.Nil(t, status.Grade)

	provisional := 55
	first := models.Submission{
		EvaluatorID:      evaluator.ID,
		StudentUsername:  "alice",
		Content:          "first try",
		Status:           models.SubmissionStatusAutoGraded,
		ProvisionalGrade: &provisional,
		SubmissionDate:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, submissions.Create(context.Background(), &first))

	final := 90
	second := models.Submission{
		EvaluatorID:      evaluator.ID,
		StudentUsername:  "alice",
		Content:          "second try",
		Status:           models.SubmissionStatusGraded,
		ProvisionalGrade: &provisional,
		FinalGrade:       &final,
		Feedback:         "much better",
	}
	require.NoError(t, submissions.Create(context.Background(), &second))

	status, err = svc.ForEvaluator(context.Background(), evaluator.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, status.Status)
	require.Equal(t, 90, *status.Grade)
	require.Equal(t, "much better", status.Feedback)
	require.NotNil(t, status.SubmissionDate)
}
