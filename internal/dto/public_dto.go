package dto

import (
	"time"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// PublicSubmissionResponse is the anonymous read-only view of a finalised
// submission. The access token and trainer emails are never included.
type PublicSubmissionResponse struct {
	StudentName string            `json:"student_name"`
	UserEmail   string            `json:"user_email"`
	SubmittedAt *time.Time        `json:"submitted_at"`
	FinalisedAt *time.Time        `json:"finalised_at"`
	Status      string            `json:"status"`
	Scenario    ScenarioResponse  `json:"scenario"`
	Budget      BudgetResponse    `json:"budget"`
	Answers     map[string]string `json:"answers"`
	Grade       *string           `json:"grade"`
	Comments    []CommentResponse `json:"comments"`
}

// NewPublicSubmissionResponse converts a finalised submission and its
// finalisation comments into the public view.
func NewPublicSubmissionResponse(model models.Submission, comments []models.Comment) PublicSubmissionResponse {
	finalisationComments := make([]models.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsFinalisation {
			finalisationComments = append(finalisationComments, comment)
		}
	}

	return PublicSubmissionResponse{
		StudentName: model.StudentName,
		UserEmail:   model.UserEmail,
		SubmittedAt: model.SubmittedAt,
		FinalisedAt: model.FinalisedAt,
		Status:      model.Status,
		Scenario: ScenarioResponse{
			ID:          model.Scenario.ID,
			Title:       model.Scenario.Title,
			Description: model.Scenario.Description,
		},
		Budget:   NewBudgetResponse(model.Budget),
		Answers:  model.Answers,
		Grade:    model.Grade,
		Comments: NewCommentResponseSlice(finalisationComments),
	}
}
