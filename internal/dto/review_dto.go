package dto

import (
	"time"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// FeedbackRequest is a trainer's feedback-and-resubmission request.
type FeedbackRequest struct {
	Comments string `json:"comments" validate:"required,min=1"`
}

// FinaliseRequest grades and finalises a submission. Comments are optional.
type FinaliseRequest struct {
	Grade    string `json:"grade" validate:"required,oneof=Satisfactory Unsatisfactory"`
	Comments string `json:"comments"`
}

// ReviewListItem summarizes one submission in the trainer review tabs.
type ReviewListItem struct {
	ID           uint       `json:"id"`
	UserEmail    string     `json:"user_email"`
	StudentName  string     `json:"student_name,omitempty"`
	FarmType     string     `json:"farm_type"`
	Status       string     `json:"status"`
	Grade        *string    `json:"grade"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	FinalisedAt  *time.Time `json:"finalised_at"`
	AssessmentID uint       `json:"assessment_id"`
}

// CommentResponse serializes a trainer comment.
type CommentResponse struct {
	ID                    uint      `json:"id"`
	Text                  string    `json:"text"`
	TrainerName           string    `json:"trainer_name"`
	IsResubmissionRequest bool      `json:"is_resubmission_request"`
	IsFinalisation        bool      `json:"is_finalisation"`
	Grade                 string    `json:"grade,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// ReviewDetailResponse is the full submission plus its comment thread and
// audit trail.
type ReviewDetailResponse struct {
	Submission SubmissionResponse    `json:"submission"`
	Comments   []CommentResponse     `json:"comments"`
	Activity   []ActivityLogResponse `json:"activity"`
}

// ActivityLogResponse serializes one audit entry on a submission.
type ActivityLogResponse struct {
	ID        uint                   `json:"id"`
	ActorID   uint                   `json:"actor_id"`
	ActorRole string                 `json:"actor_role"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewReviewListItem converts a submission into its list summary.
func NewReviewListItem(model models.Submission) ReviewListItem {
	return ReviewListItem{
		ID:           model.ID,
		UserEmail:    model.UserEmail,
		StudentName:  model.StudentName,
		FarmType:     model.Budget.FarmType,
		Status:       model.Status,
		Grade:        model.Grade,
		SubmittedAt:  model.SubmittedAt,
		FinalisedAt:  model.FinalisedAt,
		AssessmentID: model.AssessmentID,
	}
}

// NewCommentResponse converts a Comment model into a DTO.
func NewCommentResponse(model models.Comment) CommentResponse {
	return CommentResponse{
		ID:                    model.ID,
		Text:                  model.Text,
		TrainerName:           model.TrainerName,
		IsResubmissionRequest: model.IsResubmissionRequest,
		IsFinalisation:        model.IsFinalisation,
		Grade:                 model.Grade,
		CreatedAt:             model.CreatedAt,
	}
}

// NewCommentResponseSlice converts comment models into DTOs.
func NewCommentResponseSlice(items []models.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewCommentResponse(item))
	}
	return responses
}

// NewActivityLogResponseSlice converts audit entries into DTOs.
func NewActivityLogResponseSlice(items []models.ActivityLog) []ActivityLogResponse {
	responses := make([]ActivityLogResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ActivityLogResponse{
			ID:        item.ID,
			ActorID:   item.ActorID,
			ActorRole: item.ActorRole,
			Action:    item.Action,
			Metadata:  item.Metadata,
			CreatedAt: item.CreatedAt,
		})
	}
	return responses
}
