package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignments/internal/models"
)

// StudentRepository resolves the student behind an authenticated request.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// GetByID loads the columns the assignment lists need: identity and batch.
func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Select("id", "name", "batch").
		Where("id = ?", id).
		Take(&student).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}
