package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/evalio/evalio-go-api/internal/models"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	ListByEvaluator(ctx context.Context, evaluatorID uint) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentUsername string) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetWithEvaluator(ctx context.Context, id uint) (models.Submission, error)
	CountByEvaluator(ctx context.Context, evaluatorID uint) (int64, error)
	CountByEvaluatorAndStudent(ctx context.Context, evaluatorID uint, studentUsername string) (int64, error)
	LatestByEvaluatorAndStudent(ctx context.Context, evaluatorID uint, studentUsername string) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	DeleteByEvaluator(ctx context.Context, evaluatorID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ListByEvaluator(ctx context.Context, evaluatorID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("evaluator_id = ?", evaluatorID).
		Order("submission_date DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentUsername string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("student_username = ?", studentUsername).
		Order("submission_date DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetWithEvaluator(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Evaluator").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) CountByEvaluator(ctx context.Context, evaluatorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("evaluator_id = ?", evaluatorID).
		Count(&count).Error

	return count, err
}

func (r *submissionRepository) CountByEvaluatorAndStudent(ctx context.Context, evaluatorID uint, studentUsername string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("evaluator_id = ? AND student_username = ?", evaluatorID, studentUsername).
		Count(&count).Error

	return count, err
}

func (r *submissionRepository) LatestByEvaluatorAndStudent(ctx context.Context, evaluatorID uint, studentUsername string) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("evaluator_id = ? AND student_username = ?", evaluatorID, studentUsername).
		Order("submission_date DESC").
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) DeleteByEvaluator(ctx context.Context, evaluatorID uint) error {
	return r.db.WithContext(ctx).Where("evaluator_id = ?", evaluatorID).Delete(&models.Submission{}).Error
}
