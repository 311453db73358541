package assignmentlist

import "errors"

var (
	// ErrInvalidTransition is returned when an unsubmit step does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid unsubmit transition")
	// ErrUnknownAssignment is returned when the targeted assignment is not in the loaded list.
	ErrUnknownAssignment = errors.New("assignment is not in the loaded list")
	// ErrClosed is returned by operations on a view that has been closed.
	ErrClosed = errors.New("assignment list view is closed")
)

// Phase is the tag of the unsubmit state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirmationOpen
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseConfirmationOpen:
		return "confirmation_open"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// UnsubmitState pairs the phase with its target. AssignmentID is empty exactly when Phase is PhaseIdle.
type UnsubmitState struct {
	Phase        Phase
	AssignmentID string
}

func idle() UnsubmitState {
	return UnsubmitState{Phase: PhaseIdle}
}

func confirming(id string) UnsubmitState {
	return UnsubmitState{Phase: PhaseConfirmationOpen, AssignmentID: id}
}

func submitting(id string) UnsubmitState {
	return UnsubmitState{Phase: PhaseSubmitting, AssignmentID: id}
}

// ModalOpen reports whether the confirmation dialog is shown.
func (s UnsubmitState) ModalOpen() bool {
	return s.Phase == PhaseConfirmationOpen
}
