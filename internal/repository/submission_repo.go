package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignments/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	GetByAssignmentAndStudent(ctx context.Context, assignmentID string, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	DeleteByAssignmentAndStudent(ctx context.Context, assignmentID string, studentID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID string, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// DeleteByAssignmentAndStudent removes every submission the student made for the assignment.
func (r *submissionRepository) DeleteByAssignmentAndStudent(ctx context.Context, assignmentID string, studentID uint) error {
	result := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Delete(&models.Submission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
