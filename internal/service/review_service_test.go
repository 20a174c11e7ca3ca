package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

func newReviewServiceForTest(t *testing.T, db *gorm.DB, cache *redis.Client) *reviewService {
	t.Helper()

	svc := NewReviewService(
		repository.NewSubmissionRepository(db),
		repository.NewCommentRepository(db),
		repository.NewUserRepository(db),
		testValidator(),
		NewActivityService(repository.NewActivityLogRepository(db), testLogger()),
		cache,
		time.Minute,
		"https://farmbudget.example.com",
		nil,
		testLogger(),
	).(*reviewService)

	return svc
}

func seedSubmittedSubmission(t *testing.T, db *gorm.DB, assessmentID uint) models.Submission {
	t.Helper()

	now := time.Now().UTC()
	submission := models.Submission{
		UserID:       1,
		UserEmail:    "student@example.com",
		AssessmentID: assessmentID,
		Scenario:     models.DefaultScenario(),
		Budget: models.Budget{
			IncomeItems:  []models.LineItem{{Name: "Wheat", Quantity: 10, Price: 36}},
			ExpenseItems: []models.LineItem{{Name: "Fertiliser", Quantity: 4, Price: 500}},
		},
		Answers:     map[string]string{"question1": "a", "question2": "b"},
		Status:      models.SubmissionStatusSubmitted,
		SubmittedAt: &now,
	}
	submission.Budget.Recompute()
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestProvideFeedbackAppendsHistoryAndComment(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)

	result, err := svc.ProvideFeedback(context.Background(), trainerIdentity(), submission.ID, dto.FeedbackRequest{
		Comments: "Please revisit your expense estimates.",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusFeedbackProvided, result.Status)
	require.Len(t, result.FeedbackHistory, 1)
	require.Equal(t, "Please revisit your expense estimates.", result.FeedbackHistory[0].Comments)
	require.True(t, result.FeedbackHistory[0].RequestResubmission)
	require.Equal(t, "Tina Trainer", result.FeedbackHistory[0].TrainerName)

	stored := requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusFeedbackProvided)
	require.Equal(t, "Please revisit your expense estimates.", stored.Feedback)

	var comments []models.Comment
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Find(&comments).Error)
	require.Len(t, comments, 1)
	require.True(t, comments[0].IsResubmissionRequest)
	require.False(t, comments[0].IsFinalisation)

	detail, err := svc.GetDetail(context.Background(), trainerIdentity(), submission.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	require.Len(t, detail.Activity, 1)
	require.Equal(t, "submission.feedback_provided", detail.Activity[0].Action)
}

func TestProvideFeedbackRequiresComments(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)

	_, err := svc.ProvideFeedback(context.Background(), trainerIdentity(), submission.ID, dto.FeedbackRequest{})
	require.Error(t, err)

	requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusSubmitted)
}

func TestFinaliseGradesAndRotatesToken(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)
	require.NoError(t, db.Create(&models.User{ID: 1, Email: "student@example.com", FullName: "Sam Student", Role: models.RoleStudent}).Error)

	svc := newReviewServiceForTest(t, db, nil)
	tokens := []string{"token-one-aaaaaaaaaa", "token-two-bbbbbbbbbb"}
	svc.newToken = func() (string, error) {
		token := tokens[0]
		tokens = tokens[1:]
		return token, nil
	}

	ctx := context.Background()
	actor := trainerIdentity()

	result, err := svc.Finalise(ctx, actor, submission.ID, dto.FinaliseRequest{
		Grade:    models.GradeSatisfactory,
		Comments: "Well reasoned budget.",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusFinalised, result.Status)
	require.NotNil(t, result.Grade)
	require.Equal(t, models.GradeSatisfactory, *result.Grade)
	require.NotNil(t, result.FinalisedAt)
	require.Equal(t, "Sam Student", result.StudentName)
	require.Contains(t, result.PublicURL, "token=token-one-aaaaaaaaaa")

	stored := requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusFinalised)
	require.Equal(t, "token-one-aaaaaaaaaa", stored.PublicAccessToken)
	require.Len(t, stored.FeedbackHistory, 1)
	require.Equal(t, models.GradeSatisfactory, stored.FeedbackHistory[0].Grade)

	// Reopen then re-finalise rotates the share token.
	_, err = svc.Reopen(ctx, actor, submission.ID)
	require.NoError(t, err)

	second, err := svc.Finalise(ctx, actor, submission.ID, dto.FinaliseRequest{Grade: models.GradeUnsatisfactory})
	require.NoError(t, err)
	require.Contains(t, second.PublicURL, "token=token-two-bbbbbbbbbb")

	stored = requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusFinalised)
	require.Equal(t, "token-two-bbbbbbbbbb", stored.PublicAccessToken)

	// The superseded token must stop authorizing the public view.
	public := NewPublicService(repository.NewSubmissionRepository(db), repository.NewCommentRepository(db), testLogger())
	_, err = public.View(ctx, submission.ID, "token-one-aaaaaaaaaa")
	require.ErrorIs(t, err, ErrPublicViewRejected)
	_, err = public.View(ctx, submission.ID, "token-two-bbbbbbbbbb")
	require.NoError(t, err)

	var comments []models.Comment
	require.NoError(t, db.Where("submission_id = ? AND is_finalisation = ?", submission.ID, true).Find(&comments).Error)
	require.Len(t, comments, 2)
}

func TestFinaliseRejectsInvalidGrade(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)

	_, err := svc.Finalise(context.Background(), trainerIdentity(), submission.ID, dto.FinaliseRequest{Grade: "Excellent"})
	require.Error(t, err)

	requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusSubmitted)
}

func TestFinaliseRejectsDraft(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)

	draft := models.Submission{
		UserID:       1,
		UserEmail:    "student@example.com",
		AssessmentID: assessment.ID,
		Scenario:     models.DefaultScenario(),
		Status:       models.SubmissionStatusSaved,
	}
	require.NoError(t, db.Create(&draft).Error)

	svc := newReviewServiceForTest(t, db, nil)

	_, err := svc.Finalise(context.Background(), trainerIdentity(), draft.ID, dto.FinaliseRequest{Grade: models.GradeSatisfactory})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReopenPreservesGradeAndToken(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)
	svc.newToken = func() (string, error) { return "fixed-token-cccccccc", nil }

	ctx := context.Background()
	actor := trainerIdentity()

	_, err := svc.Finalise(ctx, actor, submission.ID, dto.FinaliseRequest{Grade: models.GradeSatisfactory})
	require.NoError(t, err)

	reopened, err := svc.Reopen(ctx, actor, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusFeedbackProvided, reopened.Status)
	require.NotNil(t, reopened.Grade)
	require.Equal(t, models.GradeSatisfactory, *reopened.Grade)

	stored := requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusFeedbackProvided)
	require.Equal(t, "fixed-token-cccccccc", stored.PublicAccessToken)
	require.Len(t, stored.FeedbackHistory, 2)
	require.True(t, stored.FeedbackHistory[1].RequestResubmission)
}

func TestReopenRequiresFinalised(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)

	_, err := svc.Reopen(context.Background(), trainerIdentity(), submission.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeleteHidesSubmission(t *testing.T) {
	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, nil)
	ctx := context.Background()
	actor := trainerIdentity()

	require.NoError(t, svc.Delete(ctx, actor, submission.ID))
	requireSubmissionStatus(t, db, submission.ID, models.SubmissionStatusDeleted)

	_, err := svc.GetDetail(ctx, actor, submission.ID)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	items, err := svc.ListActive(ctx, actor)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListCachesAndInvalidates(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := testDB(t)
	assessment := seedActiveAssessment(t, db, nil)
	submission := seedSubmittedSubmission(t, db, assessment.ID)

	svc := newReviewServiceForTest(t, db, cache)
	ctx := context.Background()
	actor := trainerIdentity()

	active, err := svc.ListActive(ctx, actor)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.True(t, mini.Exists(reviewCacheKeyActive))

	// Cached list is served even after the row changes underneath.
	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", submission.ID).Update("user_email", "changed@example.com").Error)
	cached, err := svc.ListActive(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, active, cached)

	_, err = svc.Finalise(ctx, actor, submission.ID, dto.FinaliseRequest{Grade: models.GradeSatisfactory})
	require.NoError(t, err)
	require.False(t, mini.Exists(reviewCacheKeyActive))

	activeAfter, err := svc.ListActive(ctx, actor)
	require.NoError(t, err)
	require.Empty(t, activeAfter)

	finalised, err := svc.ListFinalised(ctx, actor)
	require.NoError(t, err)
	require.Len(t, finalised, 1)
}

func TestReviewRequiresTrainerRole(t *testing.T) {
	db := testDB(t)
	svc := newReviewServiceForTest(t, db, nil)
	ctx := context.Background()

	_, err := svc.ListActive(ctx, studentIdentity())
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Finalise(ctx, studentIdentity(), 1, dto.FinaliseRequest{Grade: models.GradeSatisfactory})
	require.ErrorIs(t, err, ErrPermissionDenied)
}
