package models

import "time"

// Student is a learner enrolled in one batch. Assignments reach a student
// through that batch.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Batch     string    `gorm:"size:64;not null;default:'';index" json:"batch"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrolled reports whether assignment was published to the student's batch.
func (s Student) Enrolled(assignment Assignment) bool {
	return s.Batch != "" && assignment.TargetsBatch(s.Batch)
}
