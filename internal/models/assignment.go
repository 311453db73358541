package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assignment is a set of questions posted by a teacher for one or more batches.
type Assignment struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	Name         string                      `gorm:"size:255;not null" json:"name"`
	PostedByID   string                      `gorm:"size:36;not null;index" json:"posted_by_id"`
	PostedBy     Teacher                     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"posted_by"`
	PostedOn     time.Time                   `gorm:"not null" json:"posted_on"`
	DueTimestamp time.Time                   `gorm:"not null;index" json:"due_timestamp"`
	Batches      datatypes.JSONSlice[string] `json:"batches"`
	Questions    datatypes.JSONSlice[string] `json:"questions"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Submissions  []Submission                `json:"submissions,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (a *Assignment) BeforeCreate(_ *gorm.DB) error {
	if strings.TrimSpace(a.ID) == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueTimestamp)
}

// TargetsBatch reports whether the assignment was posted for the given batch.
func (a Assignment) TargetsBatch(batch string) bool {
	batch = strings.TrimSpace(batch)
	for _, candidate := range a.Batches {
		if strings.EqualFold(strings.TrimSpace(candidate), batch) {
			return true
		}
	}
	return false
}
