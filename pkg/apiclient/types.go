package apiclient

import (
	"fmt"
	"net/url"
	"strings"
)

// ListType selects which assignment collection is fetched.
type ListType string

// Supported list types. The display form is capitalised; the API path uses the lowercase form.
const (
	Pending   ListType = "Pending"
	Missed    ListType = "Missed"
	Submitted ListType = "Submitted"
)

// ListTypes enumerates the list types in display order.
var ListTypes = []ListType{Pending, Missed, Submitted}

// ParseListType accepts any casing of a list type.
func ParseListType(raw string) (ListType, error) {
	for _, candidate := range ListTypes {
		if strings.EqualFold(strings.TrimSpace(raw), string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown assignment list type %q", raw)
}

// Path is the read endpoint for the list type.
func (l ListType) Path() string {
	return "/students/assignments/" + strings.ToLower(string(l))
}

// UnsubmitPath is the write endpoint withdrawing a submission.
func UnsubmitPath(assignmentID string) string {
	return "/students/assignment/unsubmit/" + url.PathEscape(assignmentID)
}

// PostedBy names the teacher who published an assignment.
type PostedBy struct {
	Name string `json:"Name"`
}

// Assignment is a card in the assignment list. Timestamps are kept as the ISO strings the API sends.
type Assignment struct {
	ID             string   `json:"_id"`
	AssignmentName string   `json:"AssignmentName"`
	PostedBy       PostedBy `json:"PostedBy"`
	PostedOn       string   `json:"PostedOn"`
	DueTimestamp   string   `json:"DueTimestamp"`
	Batches        []string `json:"Batches"`
	Questions      []string `json:"Questions"`
	SubmittedBy    []string `json:"SubmittedBy"`
}

// Result is the outcome of a mutating call. Success=false is an application-level failure.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// APIError is returned by reads when the server answered with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}
