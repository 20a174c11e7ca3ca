package dto

import (
	"time"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// LineItemRequest is one budget row as entered by the student. The amount is
// never accepted from input; it is always derived.
type LineItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// BudgetRequest carries the raw budget spreadsheet from the form layer.
type BudgetRequest struct {
	FarmType     string            `json:"farm_type"`
	BudgetPeriod string            `json:"budget_period"`
	IncomeItems  []LineItemRequest `json:"income_items" validate:"dive"`
	ExpenseItems []LineItemRequest `json:"expense_items" validate:"dive"`
}

// SubmissionSaveRequest is the payload for both draft saves and submits.
type SubmissionSaveRequest struct {
	Budget  BudgetRequest     `json:"budget"`
	Answers map[string]string `json:"answers"`
}

// ToBudget converts the request rows into a model budget with all derived
// fields recomputed.
func (r BudgetRequest) ToBudget() models.Budget {
	budget := models.Budget{
		FarmType:     r.FarmType,
		BudgetPeriod: r.BudgetPeriod,
		IncomeItems:  toLineItems(r.IncomeItems),
		ExpenseItems: toLineItems(r.ExpenseItems),
	}
	budget.Recompute()
	return budget
}

func toLineItems(rows []LineItemRequest) []models.LineItem {
	items := make([]models.LineItem, 0, len(rows))
	for _, row := range rows {
		item := models.LineItem{
			Name:     row.Name,
			Quantity: row.Quantity,
			Price:    row.Price,
		}
		item.Recompute()
		items = append(items, item)
	}
	return items
}

// LineItemResponse is one budget row with its display amount.
type LineItemResponse struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
}

// BudgetResponse serializes a budget. Totals are rounded to two decimal
// places for display; the stored record keeps full precision.
type BudgetResponse struct {
	FarmType      string             `json:"farm_type"`
	BudgetPeriod  string             `json:"budget_period"`
	IncomeItems   []LineItemResponse `json:"income_items"`
	ExpenseItems  []LineItemResponse `json:"expense_items"`
	TotalIncome   float64            `json:"total_income"`
	TotalExpenses float64            `json:"total_expenses"`
	NetResult     float64            `json:"net_result"`
}

// FeedbackEntryResponse serializes one feedback round.
type FeedbackEntryResponse struct {
	Timestamp           time.Time `json:"timestamp"`
	Comments            string    `json:"comments"`
	TrainerEmail        string    `json:"trainer_email"`
	TrainerName         string    `json:"trainer_name"`
	RequestResubmission bool      `json:"request_resubmission"`
	Grade               string    `json:"grade,omitempty"`
}

// ScenarioResponse serializes the assigned scenario.
type ScenarioResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SubmissionResponse is returned to students and trainers viewing a submission.
type SubmissionResponse struct {
	ID              uint                    `json:"id"`
	AssessmentID    uint                    `json:"assessment_id"`
	UserID          uint                    `json:"user_id"`
	UserEmail       string                  `json:"user_email"`
	StudentName     string                  `json:"student_name,omitempty"`
	Scenario        ScenarioResponse        `json:"scenario"`
	Budget          BudgetResponse          `json:"budget"`
	Answers         map[string]string       `json:"answers"`
	Status          string                  `json:"status"`
	Submitted       bool                    `json:"submitted"`
	FeedbackHistory []FeedbackEntryResponse `json:"feedback_history"`
	LatestFeedback  *FeedbackEntryResponse  `json:"latest_feedback,omitempty"`
	Grade           *string                 `json:"grade"`
	LastSaved       *time.Time              `json:"last_saved"`
	SubmittedAt     *time.Time              `json:"submitted_at"`
	FinalisedAt     *time.Time              `json:"finalised_at"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FinaliseResponse augments the submission with the shareable public URL.
type FinaliseResponse struct {
	SubmissionResponse
	PublicURL string `json:"public_url"`
}

// NewBudgetResponse converts a model budget into its display form.
func NewBudgetResponse(budget models.Budget) BudgetResponse {
	return BudgetResponse{
		FarmType:      budget.FarmType,
		BudgetPeriod:  budget.BudgetPeriod,
		IncomeItems:   toLineItemResponses(budget.IncomeItems),
		ExpenseItems:  toLineItemResponses(budget.ExpenseItems),
		TotalIncome:   models.Round2(budget.TotalIncome),
		TotalExpenses: models.Round2(budget.TotalExpenses),
		NetResult:     models.Round2(budget.NetResult),
	}
}

func toLineItemResponses(items []models.LineItem) []LineItemResponse {
	rows := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		rows = append(rows, LineItemResponse{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Amount:   models.Round2(item.Amount),
		})
	}
	return rows
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		UserID:       model.UserID,
		UserEmail:    model.UserEmail,
		StudentName:  model.StudentName,
		Scenario: ScenarioResponse{
			ID:          model.Scenario.ID,
			Title:       model.Scenario.Title,
			Description: model.Scenario.Description,
		},
		Budget:          NewBudgetResponse(model.Budget),
		Answers:         model.Answers,
		Status:          model.Status,
		Submitted:       model.IsSubmitted(),
		FeedbackHistory: toFeedbackResponses(model.FeedbackHistory),
		Grade:           model.Grade,
		LastSaved:       model.LastSaved,
		SubmittedAt:     model.SubmittedAt,
		FinalisedAt:     model.FinalisedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if latest := model.LatestFeedback(); latest != nil {
		entry := NewFeedbackEntryResponse(*latest)
		response.LatestFeedback = &entry
	}

	return response
}

func toFeedbackResponses(entries []models.FeedbackEntry) []FeedbackEntryResponse {
	responses := make([]FeedbackEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewFeedbackEntryResponse(entry))
	}
	return responses
}

func NewFeedbackEntryResponse(entry models.FeedbackEntry) FeedbackEntryResponse {
	return FeedbackEntryResponse{
		Timestamp:           entry.Timestamp,
		Comments:            entry.Comments,
		TrainerEmail:        entry.TrainerEmail,
		TrainerName:         entry.TrainerName,
		RequestResubmission: entry.RequestResubmission,
		Grade:               entry.Grade,
	}
}
