package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Evaluator{}, &models.Submission{}))
	return db
}

func seedEvaluator(t *testing.T, db *gorm.DB) models.Evaluator {
	t.Helper()
	evaluator := models.Evaluator{
		Title:           "Weekly Quiz",
		Description:     "Covers this week's reading material.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
		AutoEval:        true,
		QuizKind:        models.QuizKindOpenEnded,
		MaxAttempts:     3,
	}
	require.NoError(t, db.Create(&evaluator).Error)
	return evaluator
}

func TestSubmissionRepositoryCountAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	evaluator := seedEvaluator(t, db)

	first := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "first attempt",
		Status:          models.SubmissionStatusSubmitted,
		SubmissionDate:  time.Now().Add(-time.Hour),
	}
	second := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "second attempt",
		Status:          models.SubmissionStatusSubmitted,
		SubmissionDate:  time.Now(),
	}
	other := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "bob",
		Content:         "bob's attempt",
		Status:          models.SubmissionStatusSubmitted,
		SubmissionDate:  time.Now(),
	}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&other).Error)

	count, err := repo.CountByEvaluatorAndStudent(context.Background(), evaluator.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	latest, err := repo.LatestByEvaluatorAndStudent(context.Background(), evaluator.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "second attempt", latest.Content)
}

func TestSubmissionRepositoryListByEvaluatorAndStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	evaluator := seedEvaluator(t, db)

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "answer",
		Status:          models.SubmissionStatusSubmitted,
	}
	require.NoError(t, db.Create(&submission).Error)

	byEvaluator, err := repo.ListByEvaluator(context.Background(), evaluator.ID)
	require.NoError(t, err)
	require.Len(t, byEvaluator, 1)

	byStudent, err := repo.ListByStudent(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, byStudent, 1)

	empty, err := repo.ListByStudent(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSubmissionRepositoryGetWithEvaluator(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	evaluator := seedEvaluator(t, db)

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "answer",
		Status:          models.SubmissionStatusSubmitted,
	}
	require.NoError(t, db.Create(&submission).Error)

	loaded, err := repo.GetWithEvaluator(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, evaluator.ID, loaded.Evaluator.ID)
	require.Equal(t, "Weekly Quiz", loaded.Evaluator.Title)
}

func TestSubmissionRepositoryUpdateLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	evaluator := seedEvaluator(t, db)

	submission := models.Submission{
		EvaluatorID:     evaluator.ID,
		StudentUsername: "alice",
		Content:         "answer",
		Status:          models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(context.Background(), &submission))

	grade := 67
	submission.Status = models.SubmissionStatusAutoGraded
	submission.ProvisionalGrade = &grade
	submission.Feedback = "good effort"
	require.NoError(t, repo.Update(context.Background(), &submission))

	reloaded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAutoGraded, reloaded.Status)
	require.NotNil(t, reloaded.ProvisionalGrade)
	require.Equal(t, 67, *reloaded.ProvisionalGrade)
}

func TestSubmissionRepositoryDeleteByEvaluator(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	evaluator := seedEvaluator(t, db)

	for i := 0; i < 3; i++ {
		submission := models.Submission{
			EvaluatorID:     evaluator.ID,
			StudentUsername: fmt.Sprintf("student%d", i),
			Content:         "answer",
			Status:          models.SubmissionStatusSubmitted,
		}
		require.NoError(t, db.Create(&submission).Error)
	}

	require.NoError(t, repo.DeleteByEvaluator(context.Background(), evaluator.ID))

	remaining, err := repo.ListByEvaluator(context.Background(), evaluator.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)
}
