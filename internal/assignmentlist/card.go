package assignmentlist

import (
	"fmt"
	"net/url"
	"time"

	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

// Stamp is a timestamp as shown on a card.
type Stamp struct {
	Date    string
	Time    string
	Elapsed string
}

// Link is a full-page navigation target.
type Link struct {
	Label string
	URL   string
}

// Card is the render model of one assignment.
type Card struct {
	ID               string
	Title            string
	PostedBy         string
	PostedOn         Stamp
	Due              Stamp
	Batches          []string
	QuestionsLabel   string
	Questions        []Link
	SubmissionsLabel string
	SubmissionsURL   string
	// SolveURL is set only on the pending list.
	SolveURL string
	// CanUnsubmit is set only on the submitted list.
	CanUnsubmit  bool
	Unsubmitting bool
}

// QuestionURL is the public view of a question.
func QuestionURL(questionID string) string {
	return "/Question/Public/" + url.PathEscape(questionID)
}

// SubmissionsURL lists the submissions of an assignment.
func SubmissionsURL(assignmentName, assignmentID string) string {
	return "/students/submissions/" + url.PathEscape(assignmentName) + "/" + url.PathEscape(assignmentID)
}

// SolveURL opens the solve view of an assignment.
func SolveURL(assignmentID string) string {
	return "/students/solveAssignment/" + url.PathEscape(assignmentID)
}

func (v *View) buildCard(assignment apiclient.Assignment, now time.Time) Card {
	card := Card{
		ID:               assignment.ID,
		Title:            assignment.AssignmentName,
		PostedBy:         assignment.PostedBy.Name,
		PostedOn:         v.stamp(assignment.PostedOn, now),
		Due:              v.stamp(assignment.DueTimestamp, now),
		Batches:          append([]string(nil), assignment.Batches...),
		QuestionsLabel:   fmt.Sprintf("Questions (%d)", len(assignment.Questions)),
		SubmissionsLabel: fmt.Sprintf("Submissions (%d)", len(assignment.SubmittedBy)),
		SubmissionsURL:   SubmissionsURL(assignment.AssignmentName, assignment.ID),
	}

	card.Questions = make([]Link, 0, len(assignment.Questions))
	for i, questionID := range assignment.Questions {
		card.Questions = append(card.Questions, Link{
			Label: fmt.Sprintf("Question %d", i+1),
			URL:   QuestionURL(questionID),
		})
	}

	switch v.listType {
	case apiclient.Pending:
		card.SolveURL = SolveURL(assignment.ID)
	case apiclient.Submitted:
		card.CanUnsubmit = true
		card.Unsubmitting = v.unsubmit.Phase == PhaseSubmitting && v.unsubmit.AssignmentID == assignment.ID
	}

	return card
}

// stamp falls back to the raw value when the timestamp cannot be parsed.
func (v *View) stamp(iso string, now time.Time) Stamp {
	display, err := v.formatter.Convert(iso)
	if err != nil {
		v.logger.Warn().Err(err).Str("timestamp", iso).Msg("unparseable assignment timestamp")
		return Stamp{Date: iso}
	}

	elapsed, err := v.formatter.Elapsed(iso, now)
	if err != nil {
		elapsed = ""
	}

	return Stamp{Date: display.Date, Time: display.Time, Elapsed: elapsed}
}
