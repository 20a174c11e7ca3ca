package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

// SettingsService manages the site settings singleton, including the active
// assessment pointer.
type SettingsService interface {
	Get(ctx context.Context) (dto.SiteSettingsResponse, error)
	Update(ctx context.Context, actor Identity, payload dto.SiteSettingsUpdateRequest) (dto.SiteSettingsResponse, error)
	SetActiveAssessment(ctx context.Context, actor Identity, payload dto.SetActiveAssessmentRequest) (dto.SiteSettingsResponse, error)
}

type settingsService struct {
	settings    repository.SettingsRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
}

// NewSettingsService constructs the site settings service.
func NewSettingsService(settingsRepo repository.SettingsRepository, assessmentRepo repository.AssessmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settings:    settingsRepo,
		assessments: assessmentRepo,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "settings_service").Logger(),
	}
}

// Get is unauthenticated so the login page can show course branding.
func (s *settingsService) Get(ctx context.Context) (dto.SiteSettingsResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	return dto.NewSiteSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, actor Identity, payload dto.SiteSettingsUpdateRequest) (dto.SiteSettingsResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	if payload.CourseName != nil {
		settings.CourseName = *payload.CourseName
	}
	if payload.CourseSubtitle != nil {
		settings.CourseSubtitle = *payload.CourseSubtitle
	}
	if payload.PageTitle != nil {
		settings.PageTitle = *payload.PageTitle
	}

	if err := s.settings.Save(ctx, &settings); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	s.logger.Info().Msg("site settings updated")

	return dto.NewSiteSettingsResponse(settings), nil
}

// SetActiveAssessment requires the target to exist and be published before
// students are pointed at it.
func (s *settingsService) SetActiveAssessment(ctx context.Context, actor Identity, payload dto.SetActiveAssessmentRequest) (dto.SiteSettingsResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SiteSettingsResponse{}, ErrAssessmentNotFound
		}
		return dto.SiteSettingsResponse{}, err
	}
	if !assessment.Published {
		return dto.SiteSettingsResponse{}, ErrAssessmentNotPublished
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	assessmentID := assessment.ID
	settings.ActiveAssessmentID = &assessmentID

	if err := s.settings.Save(ctx, &settings); err != nil {
		return dto.SiteSettingsResponse{}, err
	}

	if s.activity != nil {
		id := assessment.ID
		if err := s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "settings.active_assessment_changed",
			EntityType: "assessment",
			EntityID:   &id,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record activity")
		}
	}

	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("active assessment changed")

	return dto.NewSiteSettingsResponse(settings), nil
}
