package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.Submission{},
		&models.Comment{},
		&models.SiteSettings{},
		&models.ActivityLog{},
	))

	return db
}

// seedActiveAssessment stores a published assessment and points the site
// settings at it.
func seedActiveAssessment(t *testing.T, db *gorm.DB, scenarios []models.Scenario) models.Assessment {
	t.Helper()

	now := time.Now().UTC()
	assessment := models.Assessment{
		Title: "Farm Budget Assessment",
		Questions: []models.Question{
			{ID: "q1", Text: "What is your projected net result?"},
			{ID: "q2", Text: "Which expense would you reduce first?"},
		},
		Scenarios:   scenarios,
		Published:   true,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(&assessment).Error)

	settings := models.DefaultSiteSettings()
	settings.ActiveAssessmentID = &assessment.ID
	require.NoError(t, db.Save(&settings).Error)

	return assessment
}

func studentIdentity() Identity {
	return Identity{ID: 1, Email: "student@example.com", Name: "Sam Student", Role: models.RoleStudent}
}

func trainerIdentity() Identity {
	return Identity{ID: 2, Email: "trainer@example.com", Name: "Tina Trainer", Role: models.RoleTrainer}
}

func validSavePayload() dto.SubmissionSaveRequest {
	return dto.SubmissionSaveRequest{
		Budget: dto.BudgetRequest{
			FarmType:     "Mixed cropping",
			BudgetPeriod: "2026-27",
			IncomeItems: []dto.LineItemRequest{
				{Name: "Wheat", Quantity: 10, Price: 36},
			},
			ExpenseItems: []dto.LineItemRequest{
				{Name: "Fertiliser", Quantity: 4, Price: 500},
			},
		},
		Answers: map[string]string{
			"question1": "The projected net result is negative.",
			"question2": "Fertiliser spend.",
		},
	}
}

func requireSubmissionStatus(t *testing.T, db *gorm.DB, id uint, want string) models.Submission {
	t.Helper()

	var stored models.Submission
	require.NoError(t, db.WithContext(context.Background()).First(&stored, id).Error)
	require.Equal(t, want, stored.Status)
	return stored
}
