package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

func TestSettingsDefaultsWhenUnset(t *testing.T) {
	db := testDB(t)

	svc := NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewAssessmentRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Farm Budget Training", settings.CourseName)
	require.Nil(t, settings.ActiveAssessmentID)
}

func TestSettingsUpdatePartialFields(t *testing.T) {
	db := testDB(t)

	svc := NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewAssessmentRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)

	name := "Agribusiness Certificate IV"
	updated, err := svc.Update(context.Background(), trainerIdentity(), dto.SiteSettingsUpdateRequest{CourseName: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.CourseName)
	// Untouched fields keep their defaults.
	require.Equal(t, "Farm Budget Assessment", updated.PageTitle)
}

func TestSetActiveAssessmentRequiresPublished(t *testing.T) {
	db := testDB(t)

	draft := models.Assessment{Title: "Draft"}
	require.NoError(t, db.Create(&draft).Error)

	now := time.Now().UTC()
	published := models.Assessment{Title: "Live", Published: true, PublishedAt: &now}
	require.NoError(t, db.Create(&published).Error)

	svc := NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewAssessmentRepository(db),
		testValidator(),
		NewActivityService(repository.NewActivityLogRepository(db), testLogger()),
		testLogger(),
	)
	ctx := context.Background()
	actor := trainerIdentity()

	_, err := svc.SetActiveAssessment(ctx, actor, dto.SetActiveAssessmentRequest{AssessmentID: draft.ID})
	require.ErrorIs(t, err, ErrAssessmentNotPublished)

	_, err = svc.SetActiveAssessment(ctx, actor, dto.SetActiveAssessmentRequest{AssessmentID: 404})
	require.ErrorIs(t, err, ErrAssessmentNotFound)

	result, err := svc.SetActiveAssessment(ctx, actor, dto.SetActiveAssessmentRequest{AssessmentID: published.ID})
	require.NoError(t, err)
	require.NotNil(t, result.ActiveAssessmentID)
	require.Equal(t, published.ID, *result.ActiveAssessmentID)
}

func TestSettingsWritesRequireTrainer(t *testing.T) {
	db := testDB(t)

	svc := NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewAssessmentRepository(db),
		testValidator(),
		nil,
		testLogger(),
	)
	ctx := context.Background()

	name := "Nope"
	_, err := svc.Update(ctx, studentIdentity(), dto.SiteSettingsUpdateRequest{CourseName: &name})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.SetActiveAssessment(ctx, studentIdentity(), dto.SetActiveAssessmentRequest{AssessmentID: 1})
	require.ErrorIs(t, err, ErrPermissionDenied)
}
