package dto

import "time"

// StudentDashboardResponse summarizes a student's standing on the active
// assessment.
type StudentDashboardResponse struct {
	ActiveAssessment *StudentAssessmentResponse `json:"active_assessment"`
	Submission       *SubmissionStatusSummary   `json:"submission"`
}

// SubmissionStatusSummary is the dashboard card for the student's submission.
type SubmissionStatusSummary struct {
	SubmissionID   uint                   `json:"submission_id"`
	Status         string                 `json:"status"`
	Submitted      bool                   `json:"submitted"`
	LastSaved      *time.Time             `json:"last_saved"`
	SubmittedAt    *time.Time             `json:"submitted_at"`
	FinalisedAt    *time.Time             `json:"finalised_at"`
	Grade          *string                `json:"grade"`
	LatestFeedback *FeedbackEntryResponse `json:"latest_feedback,omitempty"`
}
