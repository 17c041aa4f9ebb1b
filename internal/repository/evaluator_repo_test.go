package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evalio/evalio-go-api/internal/models"
)

func TestEvaluatorRepositoryListByTeacher(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluatorRepository(db)

	mine := models.Evaluator{
		Title:           "My Quiz",
		Description:     "A quiz owned by teacher1.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
	}
	theirs := models.Evaluator{
		Title:           "Their Quiz",
		Description:     "A quiz owned by teacher2.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher2",
	}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	evaluators, err := repo.ListByTeacher(context.Background(), "teacher1")
	require.NoError(t, err)
	require.Len(t, evaluators, 1)
	require.Equal(t, "My Quiz", evaluators[0].Title)

	all, total, err := repo.List(context.Background(), EvaluatorFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.EqualValues(t, 2, total)
}

func TestEvaluatorRepositoryListFiltersAndPages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluatorRepository(db)

	quiz := models.Evaluator{
		Title:           "Sorting Algorithms",
		Description:     "Quiz about quicksort and mergesort.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		QuizKind:        models.QuizKindMultipleChoice,
		TeacherUsername: "teacher1",
	}
	assignment := models.Evaluator{
		Title:           "Graph Essay",
		Description:     "Write about shortest path algorithms.",
		Kind:            models.EvaluatorKindAssignment,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
	}
	require.NoError(t, db.Create(&quiz).Error)
	require.NoError(t, db.Create(&assignment).Error)

	byKind, total, err := repo.List(context.Background(), EvaluatorFilter{Kind: models.EvaluatorKindQuiz})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Sorting Algorithms", byKind[0].Title)

	bySearch, total, err := repo.List(context.Background(), EvaluatorFilter{Search: "shortest path"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Graph Essay", bySearch[0].Title)

	// Total counts every match even when the page cuts the result short.
	page, total, err := repo.List(context.Background(), EvaluatorFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.EqualValues(t, 2, total)
}

func TestEvaluatorRepositoryListAutoGradedWithCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluatorRepository(db)

	autoGraded := models.Evaluator{
		Title:           "Auto Quiz",
		Description:     "Automatically graded quiz.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
		AutoEval:        true,
		QuizKind:        models.QuizKindOpenEnded,
	}
	manual := models.Evaluator{
		Title:           "Manual Assignment",
		Description:     "Graded by hand, never listed here.",
		Kind:            models.EvaluatorKindAssignment,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
	}
	require.NoError(t, db.Create(&autoGraded).Error)
	require.NoError(t, db.Create(&manual).Error)

	grade := 80
	graded := models.Submission{
		EvaluatorID:      autoGraded.ID,
		StudentUsername:  "alice",
		Content:          "answer",
		Status:           models.SubmissionStatusAutoGraded,
		ProvisionalGrade: &grade,
	}
	pending := models.Submission{
		EvaluatorID:     autoGraded.ID,
		StudentUsername: "bob",
		Content:         "answer",
		Status:          models.SubmissionStatusPendingAutoGrade,
	}
	require.NoError(t, db.Create(&graded).Error)
	require.NoError(t, db.Create(&pending).Error)

	evaluators, counts, err := repo.ListAutoGraded(context.Background(), "teacher1")
	require.NoError(t, err)
	require.Len(t, evaluators, 1)
	require.Equal(t, "Auto Quiz", evaluators[0].Title)

	c := counts[autoGraded.ID]
	require.Equal(t, int64(2), c.SubmissionCount)
	require.Equal(t, int64(1), c.GradedCount)
}

func TestEvaluatorRepositoryCreateGetDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluatorRepository(db)

	evaluator := models.Evaluator{
		Title:           "Lifecycle Quiz",
		Description:     "Exists only for this test case.",
		Kind:            models.EvaluatorKindQuiz,
		SubmissionKind:  models.SubmissionKindText,
		TeacherUsername: "teacher1",
		MaxAttempts:     1,
	}
	require.NoError(t, repo.Create(context.Background(), &evaluator))
	require.NotZero(t, evaluator.ID)

	loaded, err := repo.GetByID(context.Background(), evaluator.ID)
	require.NoError(t, err)
	require.Equal(t, "Lifecycle Quiz", loaded.Title)

	require.NoError(t, repo.Delete(context.Background(), evaluator.ID))

	_, err = repo.GetByID(context.Background(), evaluator.ID)
	require.Error(t, err)
}
