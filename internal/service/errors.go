package service

import "errors"

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAssessmentNotFound indicates an assessment definition could not be found.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrNoActiveAssessment indicates no assessment has been activated for students.
var ErrNoActiveAssessment = errors.New("no active assessment")

// ErrAssessmentNotPublished indicates students tried to open an unpublished assessment.
var ErrAssessmentNotPublished = errors.New("assessment not published")

// ErrSubmissionLocked indicates the student attempted to edit a frozen submission.
var ErrSubmissionLocked = errors.New("submission can no longer be edited")

// ErrInvalidTransition indicates a workflow action illegal for the current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPermissionDenied indicates the actor lacks the role required for the action.
var ErrPermissionDenied = errors.New("permission denied")

// ErrPublicViewRejected indicates the public view credentials did not match.
// The same error covers wrong tokens, unfinalised and deleted submissions so
// callers cannot distinguish which record exists.
var ErrPublicViewRejected = errors.New("assessment not available for public viewing")

// ValidationError reports the first unmet submit precondition. It is
// recoverable: the student fixes the named condition and retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Identity is the authenticated actor a handler passes into lifecycle
// operations. It replaces any ambient current-user state.
type Identity struct {
	ID    uint
	Email string
	Name  string
	Role  string
}

// DisplayName returns the trainer-facing name, falling back to the email.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}
