package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

func TestCreateOrLoadAssignsScenarioOnce(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, []models.Scenario{
		{ID: "dairy", Title: "Dairy", Description: "Run a dairy farm."},
		{ID: "sheep", Title: "Sheep", Description: "Run a sheep farm."},
	})

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	).(*submissionService)
	svc.randIndex = func(n int) int { return 1 }

	ctx := context.Background()
	first, err := svc.CreateOrLoad(ctx, studentIdentity())
	require.NoError(t, err)
	require.Equal(t, "sheep", first.Scenario.ID)
	require.Equal(t, models.SubmissionStatusSaved, first.Status)
	require.Equal(t, assessment.ID, first.AssessmentID)

	// A different random draw must not replace the stored scenario.
	svc.randIndex = func(n int) int { return 0 }
	second, err := svc.CreateOrLoad(ctx, studentIdentity())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "sheep", second.Scenario.ID)
}

func TestCreateOrLoadFallsBackToDefaultScenario(t *testing.T) {
	db := testDB(t)
	seedActiveAssessment(t, db, nil)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	submission, err := svc.CreateOrLoad(context.Background(), studentIdentity())
	require.NoError(t, err)
	require.Equal(t, "default", submission.Scenario.ID)
	require.Equal(t, "Default Scenario", submission.Scenario.Title)
}

func TestCreateOrLoadRequiresActiveAssessment(t *testing.T) {
	db := testDB(t)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	_, err := svc.CreateOrLoad(context.Background(), studentIdentity())
	require.ErrorIs(t, err, ErrNoActiveAssessment)
}

func TestCreateOrLoadRejectsUnpublishedAssessment(t *testing.T) {
	db := testDB(t)
	assessment := models.Assessment{Title: "Draft only"}
	require.NoError(t, db.Create(&assessment).Error)
	settings := models.DefaultSiteSettings()
	settings.ActiveAssessmentID = &assessment.ID
	require.NoError(t, db.Save(&settings).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	_, err := svc.CreateOrLoad(context.Background(), studentIdentity())
	require.ErrorIs(t, err, ErrAssessmentNotPublished)
}

func TestCreateOrLoadRejectsTrainer(t *testing.T) {
	db := testDB(t)
	seedActiveAssessment(t, db, nil)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	_, err := svc.CreateOrLoad(context.Background(), trainerIdentity())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSaveDraftRecomputesAmountsAndSanitizesAnswers(t *testing.T) {
	db := testDB(t)
	seedActiveAssessment(t, db, nil)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	payload := validSavePayload()
	payload.Answers["question1"] = "<script>alert(1)</script>Plain answer"

	saved, err := svc.SaveDraft(context.Background(), studentIdentity(), payload)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSaved, saved.Status)
	require.NotNil(t, saved.LastSaved)
	require.Equal(t, 360.0, saved.Budget.TotalIncome)
	require.Equal(t, 2000.0, saved.Budget.TotalExpenses)
	require.Equal(t, -1640.0, saved.Budget.NetResult)
	require.Equal(t, "Plain answer", saved.Answers["question1"])
}

func TestSubmitValidationOrder(t *testing.T) {
	db := testDB(t)
	seedActiveAssessment(t, db, nil)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)
	ctx := context.Background()
	actor := studentIdentity()

	// No valid income row.
	payload := validSavePayload()
	payload.Budget.IncomeItems = []dto.LineItemRequest{{Name: "Wheat", Quantity: 0, Price: 36}}
	_, err := svc.Submit(ctx, actor, payload)
	require.EqualError(t, err, "Please add at least one income item with a name, quantity, and price greater than zero.")

	// Income fixed, no valid expense row.
	payload = validSavePayload()
	payload.Budget.ExpenseItems = nil
	_, err = svc.Submit(ctx, actor, payload)
	require.EqualError(t, err, "Please add at least one expense item with a name, quantity, and price greater than zero.")

	// Budget fixed, second answer blank.
	payload = validSavePayload()
	payload.Answers["question2"] = "   "
	_, err = svc.Submit(ctx, actor, payload)
	require.EqualError(t, err, "Please answer all questions. Question 2 is empty.")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitTransitionsAndLocks(t *testing.T) {
	db := testDB(t)
	seedActiveAssessment(t, db, nil)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)
	ctx := context.Background()
	actor := studentIdentity()

	submitted, err := svc.Submit(ctx, actor, validSavePayload())
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, submitted.Status)
	require.True(t, submitted.Submitted)
	require.NotNil(t, submitted.SubmittedAt)
	require.NotNil(t, submitted.LastSaved)

	// Submitted work is frozen until a trainer acts.
	_, err = svc.SaveDraft(ctx, actor, validSavePayload())
	require.ErrorIs(t, err, ErrSubmissionLocked)

	_, err = svc.Submit(ctx, actor, validSavePayload())
	require.ErrorIs(t, err, ErrSubmissionLocked)

	requireSubmissionStatus(t, db, submitted.ID, models.SubmissionStatusSubmitted)
}

func TestResubmitClearsFeedbackMirrorKeepsHistory(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)

	submission := models.Submission{
		UserID:       1,
		UserEmail:    "student@example.com",
		AssessmentID: assessment.ID,
		Scenario:     models.DefaultScenario(),
		Status:       models.SubmissionStatusFeedbackProvided,
		Feedback:     "Please rework the expenses.",
		FeedbackHistory: []models.FeedbackEntry{
			{Comments: "Please rework the expenses.", TrainerEmail: "trainer@example.com", RequestResubmission: true},
		},
	}
	require.NoError(t, db.Create(&submission).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewSettingsRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	resubmitted, err := svc.Submit(context.Background(), studentIdentity(), validSavePayload())
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, resubmitted.Status)
	require.Len(t, resubmitted.FeedbackHistory, 1)

	stored := requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusSubmitted)
	require.Empty(t, stored.Feedback)
	require.Len(t, stored.FeedbackHistory, 1)
}
