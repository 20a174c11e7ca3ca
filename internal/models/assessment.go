package models

import (
	"strconv"
	"time"
)

// Assessment is a trainer-authored assessment definition.
type Assessment struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Title                string     `gorm:"size:255;not null" json:"title"`
	Description          string     `gorm:"type:text" json:"description"`
	Instructions         string     `gorm:"type:text" json:"instructions"`
	BudgetInstructions   string     `gorm:"type:text" json:"budget_instructions"`
	AnalysisInstructions string     `gorm:"type:text" json:"analysis_instructions"`
	Questions            []Question `gorm:"serializer:json" json:"questions"`
	Scenarios            []Scenario `gorm:"serializer:json" json:"scenarios"`
	Published            bool       `gorm:"not null;default:false" json:"published"`
	PublishedAt          *time.Time `json:"published_at"`
	PublishedBy          *uint      `json:"published_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Question is one analysis question, answered free-text by the student.
// Questions keep their authored order.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Scenario is a narrative farm-operation description framing the budget
// exercise. One is assigned per student at random.
type Scenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultScenario is assigned when an assessment defines no scenarios.
func DefaultScenario() Scenario {
	return Scenario{
		ID:          "default",
		Title:       "Default Scenario",
		Description: "You are the manager of a farm. Create a budget and answer the questions.",
	}
}

// AnswerKey returns the map key a question's answer is stored under. Keys are
// one-based to match the numbering shown to students.
func AnswerKey(index int) string {
	return "question" + strconv.Itoa(index+1)
}
