package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

func seedFinalisedSubmission(t *testing.T, db *gorm.DB, token string) models.Submission {
	t.Helper()

	now := time.Now().UTC()
	grade := models.GradeSatisfactory
	submission := models.Submission{
		UserID:       1,
		UserEmail:    "student@example.com",
		AssessmentID: 1,
		StudentName:  "Sam Student",
		Scenario:     models.DefaultScenario(),
		Budget: models.Budget{
			IncomeItems:  []models.LineItem{{Name: "Wheat", Quantity: 10, Price: 36}},
			ExpenseItems: []models.LineItem{{Name: "Fertiliser", Quantity: 4, Price: 500}},
		},
		Answers:           map[string]string{"question1": "a"},
		Status:            models.SubmissionStatusFinalised,
		Grade:             &grade,
		PublicAccessToken: token,
		SubmittedAt:       &now,
		FinalisedAt:       &now,
	}
	submission.Budget.Recompute()
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestPublicViewAcceptsMatchingToken(t *testing.T) {
	db := testDB(t)
	submission := seedFinalisedSubmission(t, db, "sharedtokenAAAA111122")

	commentRepo := repository.NewCommentRepository(db)
	require.NoError(t, db.Create(&models.Comment{
		SubmissionID:   submission.ID,
		Text:           "Well done.\n\nGrade: Satisfactory",
		TrainerID:      2,
		TrainerName:    "Tina Trainer",
		IsFinalisation: true,
		Grade:          models.GradeSatisfactory,
	}).Error)
	require.NoError(t, db.Create(&models.Comment{
		SubmissionID:          submission.ID,
		Text:                  "Internal note to student.",
		TrainerID:             2,
		IsResubmissionRequest: true,
	}).Error)

	svc := NewPublicService(repository.NewSubmissionRepository(db), commentRepo, testLogger())

	view, err := svc.View(context.Background(), submission.ID, "sharedtokenAAAA111122")
	require.NoError(t, err)
	require.Equal(t, "Sam Student", view.StudentName)
	require.Equal(t, models.SubmissionStatusFinalised, view.Status)
	require.NotNil(t, view.Grade)

	// Only finalisation comments are visible to link holders.
	require.Len(t, view.Comments, 1)
	require.True(t, view.Comments[0].IsFinalisation)
}

func TestPublicViewRejections(t *testing.T) {
	db := testDB(t)
	finalised := seedFinalisedSubmission(t, db, "sharedtokenAAAA111122")

	pending := models.Submission{
		UserID:            3,
		UserEmail:         "other@example.com",
		AssessmentID:      1,
		Scenario:          models.DefaultScenario(),
		Status:            models.SubmissionStatusSubmitted,
		PublicAccessToken: "pendingtokenBBBB2222",
	}
	require.NoError(t, db.Create(&pending).Error)

	svc := NewPublicService(repository.NewSubmissionRepository(db), repository.NewCommentRepository(db), testLogger())
	ctx := context.Background()

	cases := []struct {
		name  string
		id    uint
		token string
	}{
		{name: "wrong token", id: finalised.ID, token: "wrongtokenCCCC333344"},
		{name: "empty token", id: finalised.ID, token: ""},
		{name: "not finalised", id: pending.ID, token: "pendingtokenBBBB2222"},
		{name: "unknown submission", id: 9999, token: "sharedtokenAAAA111122"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.View(ctx, tc.id, tc.token)
			require.ErrorIs(t, err, ErrPublicViewRejected)
		})
	}
}

func TestPublicViewRejectsEmptyStoredToken(t *testing.T) {
	db := testDB(t)
	submission := seedFinalisedSubmission(t, db, "")

	svc := NewPublicService(repository.NewSubmissionRepository(db), repository.NewCommentRepository(db), testLogger())

	_, err := svc.View(context.Background(), submission.ID, "")
	require.ErrorIs(t, err, ErrPublicViewRejected)
}
