package models

import (
	"time"
)

// Submission records one student's attempt at an assessment. There is at most
// one submission per (user, assessment) pair.
type Submission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;uniqueIndex:idx_user_assessment" json:"user_id"`
	UserEmail    string `gorm:"size:255;not null" json:"user_email"`
	AssessmentID uint   `gorm:"not null;uniqueIndex:idx_user_assessment" json:"assessment_id"`

	Scenario Scenario          `gorm:"serializer:json" json:"scenario"`
	Budget   Budget            `gorm:"serializer:json" json:"budget"`
	Answers  map[string]string `gorm:"serializer:json" json:"answers"`

	Status string `gorm:"size:32;not null" json:"status"`

	FeedbackHistory []FeedbackEntry `gorm:"serializer:json" json:"feedback_history"`
	// Feedback mirrors the latest feedback comment. Display compatibility
	// only; FeedbackHistory is authoritative.
	Feedback string `gorm:"type:text" json:"feedback"`

	Grade             *string `gorm:"size:32" json:"grade"`
	PublicAccessToken string  `gorm:"size:64" json:"-"`

	// StudentName is snapshotted at finalisation for the public view.
	StudentName string `gorm:"size:255" json:"student_name"`

	LastSaved   *time.Time `json:"last_saved"`
	SubmittedAt *time.Time `json:"submitted_at"`
	FinalisedAt *time.Time `json:"finalised_at"`
	FinalisedBy *uint      `json:"finalised_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assessment Assessment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
}

const (
	// SubmissionStatusSaved indicates a draft the student can still edit.
	SubmissionStatusSaved = "saved"
	// SubmissionStatusSubmitted indicates the submission awaits trainer review.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusFeedbackProvided indicates a trainer requested resubmission.
	SubmissionStatusFeedbackProvided = "feedback_provided"
	// SubmissionStatusFinalised indicates the submission has been graded.
	SubmissionStatusFinalised = "finalised"
	// SubmissionStatusDeleted marks a soft-deleted submission.
	SubmissionStatusDeleted = "deleted"
)

const (
	// GradeSatisfactory is the passing grade.
	GradeSatisfactory = "Satisfactory"
	// GradeUnsatisfactory is the failing grade.
	GradeUnsatisfactory = "Unsatisfactory"
)

// FeedbackEntry is one round of trainer feedback. Entries are appended in
// chronological order and never edited or removed.
type FeedbackEntry struct {
	Timestamp           time.Time `json:"timestamp"`
	Comments            string    `json:"comments"`
	TrainerEmail        string    `json:"trainer_email"`
	TrainerName         string    `json:"trainer_name"`
	RequestResubmission bool      `json:"request_resubmission"`
	Grade               string    `json:"grade,omitempty"`
}

// IsSubmitted reports whether the submission has left the draft stage. It
// replaces the legacy boolean flag that coexisted with the status field.
func (s Submission) IsSubmitted() bool {
	switch s.Status {
	case SubmissionStatusSubmitted, SubmissionStatusFeedbackProvided, SubmissionStatusFinalised:
		return true
	}
	return false
}

// Editable reports whether the student may still change budget and answers.
func (s Submission) Editable() bool {
	return s.Status == SubmissionStatusSaved || s.Status == SubmissionStatusFeedbackProvided
}

// HasScenario reports whether a scenario has already been assigned.
func (s Submission) HasScenario() bool {
	return s.Scenario.ID != ""
}

// LatestFeedback returns the most recent feedback entry, if any.
func (s Submission) LatestFeedback() *FeedbackEntry {
	if len(s.FeedbackHistory) == 0 {
		return nil
	}
	return &s.FeedbackHistory[len(s.FeedbackHistory)-1]
}

// ValidGrade reports whether the value belongs to the grade enum.
func ValidGrade(grade string) bool {
	return grade == GradeSatisfactory || grade == GradeUnsatisfactory
}
