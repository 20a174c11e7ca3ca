package dto

import (
	"time"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// QuestionInput is one analysis question in editor payloads.
type QuestionInput struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"required"`
}

// ScenarioInput is one scenario in editor payloads.
type ScenarioInput struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// AssessmentCreateRequest creates a new assessment definition.
type AssessmentCreateRequest struct {
	Title                string          `json:"title" validate:"required,min=3"`
	Description          string          `json:"description"`
	Instructions         string          `json:"instructions"`
	BudgetInstructions   string          `json:"budget_instructions"`
	AnalysisInstructions string          `json:"analysis_instructions"`
	Questions            []QuestionInput `json:"questions" validate:"dive"`
	Scenarios            []ScenarioInput `json:"scenarios" validate:"dive"`
}

// AssessmentUpdateRequest updates an existing definition. Nil fields are left
// unchanged; question and scenario lists replace the stored ones wholesale.
type AssessmentUpdateRequest struct {
	Title                *string          `json:"title" validate:"omitempty,min=3"`
	Description          *string          `json:"description"`
	Instructions         *string          `json:"instructions"`
	BudgetInstructions   *string          `json:"budget_instructions"`
	AnalysisInstructions *string          `json:"analysis_instructions"`
	Questions            *[]QuestionInput `json:"questions" validate:"omitempty,dive"`
	Scenarios            *[]ScenarioInput `json:"scenarios" validate:"omitempty,dive"`
}

// AssessmentResponse serializes an assessment definition for trainers.
type AssessmentResponse struct {
	ID                   uint               `json:"id"`
	Title                string             `json:"title"`
	Description          string             `json:"description"`
	Instructions         string             `json:"instructions"`
	BudgetInstructions   string             `json:"budget_instructions"`
	AnalysisInstructions string             `json:"analysis_instructions"`
	Questions            []QuestionInput    `json:"questions"`
	Scenarios            []ScenarioResponse `json:"scenarios"`
	Published            bool               `json:"published"`
	PublishedAt          *time.Time         `json:"published_at"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// StudentAssessmentResponse is the published definition as students see it:
// the scenario list is withheld so students cannot browse variants they were
// not assigned.
type StudentAssessmentResponse struct {
	ID                   uint            `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Instructions         string          `json:"instructions"`
	BudgetInstructions   string          `json:"budget_instructions"`
	AnalysisInstructions string          `json:"analysis_instructions"`
	Questions            []QuestionInput `json:"questions"`
}

// NewAssessmentResponse converts an Assessment model into a DTO.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	questions := make([]QuestionInput, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, QuestionInput{ID: question.ID, Text: question.Text})
	}

	scenarios := make([]ScenarioResponse, 0, len(model.Scenarios))
	for _, scenario := range model.Scenarios {
		scenarios = append(scenarios, ScenarioResponse{
			ID:          scenario.ID,
			Title:       scenario.Title,
			Description: scenario.Description,
		})
	}

	return AssessmentResponse{
		ID:                   model.ID,
		Title:                model.Title,
		Description:          model.Description,
		Instructions:         model.Instructions,
		BudgetInstructions:   model.BudgetInstructions,
		AnalysisInstructions: model.AnalysisInstructions,
		Questions:            questions,
		Scenarios:            scenarios,
		Published:            model.Published,
		PublishedAt:          model.PublishedAt,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

// NewAssessmentResponseSlice converts assessment models into DTOs.
func NewAssessmentResponseSlice(items []models.Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssessmentResponse(item))
	}
	return responses
}

// NewStudentAssessmentResponse converts an Assessment into its student view.
func NewStudentAssessmentResponse(model models.Assessment) StudentAssessmentResponse {
	questions := make([]QuestionInput, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, QuestionInput{ID: question.ID, Text: question.Text})
	}

	return StudentAssessmentResponse{
		ID:                   model.ID,
		Title:                model.Title,
		Description:          model.Description,
		Instructions:         model.Instructions,
		BudgetInstructions:   model.BudgetInstructions,
		AnalysisInstructions: model.AnalysisInstructions,
		Questions:            questions,
	}
}
