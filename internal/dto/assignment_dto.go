package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/gema-assignments/internal/models"
)

// Assignment list categories relative to the requesting student.
const (
	ListTypePending   = "pending"
	ListTypeMissed    = "missed"
	ListTypeSubmitted = "submitted"
)

// ListTypes enumerates the supported categories in display order.
var ListTypes = []string{ListTypePending, ListTypeMissed, ListTypeSubmitted}

// AssignmentListRequest carries the path parameter of the list endpoint.
type AssignmentListRequest struct {
	ListType string `validate:"required,oneof=pending missed submitted"`
}

// NormalizeListType lowercases and trims a list type path segment.
func NormalizeListType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// UnsubmitRequest identifies the submission a student wants to withdraw.
type UnsubmitRequest struct {
	AssignmentID string `validate:"required,uuid"`
	StudentID    uint   `validate:"required,gt=0"`
}

// PostedBy names the teacher who published an assignment.
type PostedBy struct {
	Name string `json:"Name"`
}

// StudentAssignment is the card-level representation served to the assignment list.
type StudentAssignment struct {
	ID             string    `json:"_id"`
	AssignmentName string    `json:"AssignmentName"`
	PostedBy       PostedBy  `json:"PostedBy"`
	PostedOn       time.Time `json:"PostedOn"`
	DueTimestamp   time.Time `json:"DueTimestamp"`
	Batches        []string  `json:"Batches"`
	Questions      []string  `json:"Questions"`
	SubmittedBy    []string  `json:"SubmittedBy"`
}

// NewStudentAssignment converts a model (with PostedBy and Submissions preloaded) into a DTO.
func NewStudentAssignment(model models.Assignment) StudentAssignment {
	submittedBy := make([]string, 0, len(model.Submissions))
	for _, submission := range model.Submissions {
		submittedBy = append(submittedBy, strconv.FormatUint(uint64(submission.StudentID), 10))
	}

	return StudentAssignment{
		ID:             model.ID,
		AssignmentName: model.Name,
		PostedBy:       PostedBy{Name: model.PostedBy.Name},
		PostedOn:       model.PostedOn.UTC(),
		DueTimestamp:   model.DueTimestamp.UTC(),
		Batches:        nonNil(model.Batches),
		Questions:      nonNil(model.Questions),
		SubmittedBy:    submittedBy,
	}
}

// NewStudentAssignmentSlice converts a slice of models into DTOs.
func NewStudentAssignmentSlice(assignments []models.Assignment) []StudentAssignment {
	responses := make([]StudentAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewStudentAssignment(assignment))
	}

	return responses
}

// AssignmentUnsubmittedEvent is published after a student withdraws a submission.
type AssignmentUnsubmittedEvent struct {
	AssignmentID string    `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}
