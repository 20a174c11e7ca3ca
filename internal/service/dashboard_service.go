package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

// DashboardService assembles the student landing view: the active assessment
// and the student's standing on it.
type DashboardService interface {
	StudentDashboard(ctx context.Context, actor Identity) (dto.StudentDashboardResponse, error)
	InvalidateStudent(ctx context.Context, userID uint)
}

// DashboardInvalidator is the slice of DashboardService the lifecycle
// services use to drop a student's cached dashboard after a transition.
type DashboardInvalidator interface {
	InvalidateStudent(ctx context.Context, userID uint)
}

type dashboardService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	settings    repository.SettingsRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService constructs the student dashboard service.
func NewDashboardService(subRepo repository.SubmissionRepository, assessmentRepo repository.AssessmentRepository, settingsRepo repository.SettingsRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		submissions: subRepo,
		assessments: assessmentRepo,
		settings:    settingsRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:student:%d", userID)
}

func (s *dashboardService) StudentDashboard(ctx context.Context, actor Identity) (dto.StudentDashboardResponse, error) {
	if err := requireStudent(actor); err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	cacheKey := dashboardCacheKey(actor.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", actor.ID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	response, err := s.buildDashboard(ctx, actor)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildDashboard(ctx context.Context, actor Identity) (dto.StudentDashboardResponse, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{}

	if settings.ActiveAssessmentID == nil {
		return response, nil
	}

	assessment, err := s.assessments.GetByID(ctx, *settings.ActiveAssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.StudentDashboardResponse{}, err
	}
	if !assessment.Published {
		return response, nil
	}

	active := dto.NewStudentAssessmentResponse(assessment)
	response.ActiveAssessment = &active

	submission, err := s.submissions.GetByUserAndAssessment(ctx, actor.ID, assessment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response, nil
		}
		return dto.StudentDashboardResponse{}, err
	}

	summary := dto.SubmissionStatusSummary{
		SubmissionID: submission.ID,
		Status:       submission.Status,
		Submitted:    submission.IsSubmitted(),
		LastSaved:    submission.LastSaved,
		SubmittedAt:  submission.SubmittedAt,
		FinalisedAt:  submission.FinalisedAt,
		Grade:        submission.Grade,
	}
	if latest := submission.LatestFeedback(); latest != nil {
		entry := dto.NewFeedbackEntryResponse(*latest)
		summary.LatestFeedback = &entry
	}
	response.Submission = &summary

	return response, nil
}

// InvalidateStudent drops the cached dashboard after a lifecycle change.
func (s *dashboardService) InvalidateStudent(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate dashboard cache")
	}
}
