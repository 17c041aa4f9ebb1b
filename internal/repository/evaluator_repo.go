package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/models"
)

// AutoGradedCounts aggregates submission totals for one evaluator.
type AutoGradedCounts struct {
	EvaluatorID     uint
	SubmissionCount int64
	GradedCount     int64
}

// EvaluatorFilter narrows and pages evaluator listings.
type EvaluatorFilter struct {
	Search   string
	Kind     string
	QuizKind string
	Skip     int
	Limit    int
}

// EvaluatorRepository defines persistence operations for evaluators.
type EvaluatorRepository interface {
	List(ctx context.Context, filter EvaluatorFilter) ([]models.Evaluator, int64, error)
	ListByTeacher(ctx context.Context, teacherUsername string) ([]models.Evaluator, error)
	ListAutoGraded(ctx context.Context, teacherUsername string) ([]models.Evaluator, map[uint]AutoGradedCounts, error)
	GetByID(ctx context.Context, id uint) (models.Evaluator, error)
	Create(ctx context.Context, evaluator *models.Evaluator) error
	Update(ctx context.Context, evaluator *models.Evaluator) error
	Delete(ctx context.Context, id uint) error
}

type evaluatorRepository struct {
	db *gorm.DB
}

// NewEvaluatorRepository instantiates a GORM-backed repository.
func NewEvaluatorRepository(db *gorm.DB) EvaluatorRepository {
	return &evaluatorRepository{db: db}
}

func (r *evaluatorRepository) List(ctx context.Context, filter EvaluatorFilter) ([]models.Evaluator, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Evaluator{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.QuizKind != "" {
		query = query.Where("quiz_kind = ?", filter.QuizKind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	var evaluators []models.Evaluator
	err := query.
		Order("created_at DESC").
		Offset(filter.Skip).
		Limit(filter.Limit).
		Find(&evaluators).Error
	if err != nil {
		return nil, 0, err
	}

	return evaluators, total, nil
}

func (r *evaluatorRepository) ListByTeacher(ctx context.Context, teacherUsername string) ([]models.Evaluator, error) {
	var evaluators []models.Evaluator
	err := r.db.WithContext(ctx).
		Where("teacher_username = ?", teacherUsername).
		Order("created_at DESC").
		Find(&evaluators).Error
	if err != nil {
		return nil, err
	}

	return evaluators, nil
}

func (r *evaluatorRepository) ListAutoGraded(ctx context.Context, teacherUsername string) ([]models.Evaluator, map[uint]AutoGradedCounts, error) {
	var evaluators []models.Evaluator
	err := r.db.WithContext(ctx).
		Where("teacher_username = ? AND auto_eval = ? AND kind = ?", teacherUsername, true, models.EvaluatorKindQuiz).
		Order("created_at DESC").
		Find(&evaluators).Error
	if err != nil {
		return nil, nil, err
	}

	counts := make(map[uint]AutoGradedCounts, len(evaluators))
	if len(evaluators) == 0 {
		return evaluators, counts, nil
	}

	ids := make([]uint, 0, len(evaluators))
	for _, evaluator := range evaluators {
		ids = append(ids, evaluator.ID)
	}

	rows := []struct {
		EvaluatorID     uint
		SubmissionCount int64
		GradedCount     int64
	}{}
	err = r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("evaluator_id, COUNT(*) AS submission_count, SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END) AS graded_count",
			[]string{models.SubmissionStatusAutoGraded, models.SubmissionStatusGraded}).
		Where("evaluator_id IN ?", ids).
		Group("evaluator_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		counts[row.EvaluatorID] = AutoGradedCounts{
			EvaluatorID:     row.EvaluatorID,
			SubmissionCount: row.SubmissionCount,
			GradedCount:     row.GradedCount,
		}
	}

	return evaluators, counts, nil
}

func (r *evaluatorRepository) GetByID(ctx context.Context, id uint) (models.Evaluator, error) {
	var evaluator models.Evaluator
	if err := r.db.WithContext(ctx).First(&evaluator, id).Error; err != nil {
		return models.Evaluator{}, err
	}

	return evaluator, nil
}

func (r *evaluatorRepository) Create(ctx context.Context, evaluator *models.Evaluator) error {
	return r.db.WithContext(ctx).Create(evaluator).Error
}

func (r *evaluatorRepository) Update(ctx context.Context, evaluator *models.Evaluator) error {
	return r.db.WithContext(ctx).Save(evaluator).Error
}

func (r *evaluatorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Evaluator{}, id).Error
}
