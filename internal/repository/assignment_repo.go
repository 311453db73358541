package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignments/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListForBatch(ctx context.Context, batch string) ([]models.Assignment, error)
	GetByID(ctx context.Context, id string) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("PostedBy").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// ListForBatch returns the assignments posted for the batch, earliest due first.
// Batches are stored as a JSON column, so membership is checked after loading.
func (r *assignmentRepository) ListForBatch(ctx context.Context, batch string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).Order("due_timestamp ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	filtered := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.TargetsBatch(batch) {
			filtered = append(filtered, assignment)
		}
	}

	return filtered, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.baseQuery(ctx).Where("id = ?", id).First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}
