package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
	"github.com/agrilearn/farmbudget-api/internal/utils"
)

const (
	reviewCacheKeyActive    = "review:list:active"
	reviewCacheKeyFinalised = "review:list:finalised"
)

// ReviewService drives the trainer side of the submission lifecycle:
// listing submissions for review, providing feedback, grading and reopening.
type ReviewService interface {
	ListActive(ctx context.Context, actor Identity) ([]dto.ReviewListItem, error)
	ListFinalised(ctx context.Context, actor Identity) ([]dto.ReviewListItem, error)
	GetDetail(ctx context.Context, actor Identity, submissionID uint) (dto.ReviewDetailResponse, error)
	ProvideFeedback(ctx context.Context, actor Identity, submissionID uint, payload dto.FeedbackRequest) (dto.SubmissionResponse, error)
	Finalise(ctx context.Context, actor Identity, submissionID uint, payload dto.FinaliseRequest) (dto.FinaliseResponse, error)
	Reopen(ctx context.Context, actor Identity, submissionID uint) (dto.SubmissionResponse, error)
	Delete(ctx context.Context, actor Identity, submissionID uint) error
}

type reviewService struct {
	submissions   repository.SubmissionRepository
	comments      repository.CommentRepository
	users         repository.UserRepository
	validator     *validator.Validate
	activity      ActivityRecorder
	cache         *redis.Client
	cacheTTL      time.Duration
	publicBaseURL string
	sanitizer     *bluemonday.Policy
	dashboards    DashboardInvalidator
	tracer        trace.Tracer
	logger        zerolog.Logger
	now           func() time.Time
	newToken      func() (string, error)
}

// NewReviewService constructs the trainer review service.
func NewReviewService(subRepo repository.SubmissionRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, cache *redis.Client, cacheTTL time.Duration, publicBaseURL string, dashboards DashboardInvalidator, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions:   subRepo,
		comments:      commentRepo,
		users:         userRepo,
		validator:     validate,
		activity:      activity,
		cache:         cache,
		cacheTTL:      cacheTTL,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		dashboards:    dashboards,
		sanitizer:     bluemonday.StrictPolicy(),
		tracer:        otel.Tracer("github.com/agrilearn/farmbudget-api/internal/service/review"),
		logger:        logger.With().Str("component", "review_service").Logger(),
		now:           time.Now,
		newToken:      utils.GenerateAccessToken,
	}
}

func (s *reviewService) ListActive(ctx context.Context, actor Identity) ([]dto.ReviewListItem, error) {
	return s.list(ctx, actor, reviewCacheKeyActive, []string{models.SubmissionStatusSubmitted, models.SubmissionStatusFeedbackProvided})
}

func (s *reviewService) ListFinalised(ctx context.Context, actor Identity) ([]dto.ReviewListItem, error) {
	return s.list(ctx, actor, reviewCacheKeyFinalised, []string{models.SubmissionStatusFinalised})
}

func (s *reviewService) list(ctx context.Context, actor Identity, cacheKey string, statuses []string) ([]dto.ReviewListItem, error) {
	if err := requireTrainer(actor); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var items []dto.ReviewListItem
			if unmarshalErr := json.Unmarshal([]byte(cached), &items); unmarshalErr == nil {
				s.logger.Debug().Str("cache_key", cacheKey).Msg("review list cache hit")
				return items, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read review list cache")
		}
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{Statuses: statuses})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ReviewListItem, 0, len(submissions))
	for _, submission := range submissions {
		item := dto.NewReviewListItem(submission)
		if item.StudentName == "" {
			item.StudentName = s.resolveStudentName(ctx, submission.UserID)
		}
		items = append(items, item)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store review list cache")
			}
		}
	}

	return items, nil
}

func (s *reviewService) GetDetail(ctx context.Context, actor Identity, submissionID uint) (dto.ReviewDetailResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.ReviewDetailResponse{}, err
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.ReviewDetailResponse{}, err
	}

	comments, err := s.comments.ListBySubmission(ctx, submissionID)
	if err != nil {
		return dto.ReviewDetailResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission)
	if response.StudentName == "" {
		response.StudentName = s.resolveStudentName(ctx, submission.UserID)
	}

	detail := dto.ReviewDetailResponse{
		Submission: response,
		Comments:   dto.NewCommentResponseSlice(comments),
	}

	if s.activity != nil {
		trail, err := s.activity.ListByEntity(ctx, "submission", submissionID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("failed to load activity trail")
		} else {
			detail.Activity = dto.NewActivityLogResponseSlice(trail)
		}
	}

	return detail, nil
}

func (s *reviewService) ProvideFeedback(ctx context.Context, actor Identity, submissionID uint, payload dto.FeedbackRequest) (dto.SubmissionResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	commentText := strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments))
	if commentText == "" {
		return dto.SubmissionResponse{}, newValidationError("Please enter feedback comments before requesting resubmission.")
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusSubmitted && submission.Status != models.SubmissionStatusFeedbackProvided {
		return dto.SubmissionResponse{}, ErrInvalidTransition
	}

	now := s.now()
	submission.FeedbackHistory = append(submission.FeedbackHistory, models.FeedbackEntry{
		Timestamp:           now,
		Comments:            commentText,
		TrainerEmail:        actor.Email,
		TrainerName:         actor.DisplayName(),
		RequestResubmission: true,
	})
	submission.Status = models.SubmissionStatusFeedbackProvided
	submission.Feedback = commentText

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.addComment(ctx, models.Comment{
		SubmissionID:          submission.ID,
		Text:                  commentText,
		TrainerID:             actor.ID,
		TrainerName:           actor.DisplayName(),
		IsResubmissionRequest: true,
	})
	s.recordActivity(ctx, actor, "submission.feedback_provided", submission.ID, nil)
	s.invalidateCaches(ctx, submission.UserID)

	s.logger.Info().Uint("submission_id", submission.ID).Msg("feedback provided")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *reviewService) Finalise(ctx context.Context, actor Identity, submissionID uint, payload dto.FinaliseRequest) (dto.FinaliseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.finalise")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := requireTrainer(actor); err != nil {
		span.SetStatus(codes.Error, "permission_denied")
		return dto.FinaliseResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.FinaliseResponse{}, err
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.FinaliseResponse{}, err
	}

	if submission.Status != models.SubmissionStatusSubmitted && submission.Status != models.SubmissionStatusFeedbackProvided {
		span.SetStatus(codes.Error, "invalid_transition")
		return dto.FinaliseResponse{}, ErrInvalidTransition
	}

	token, err := s.newToken()
	if err != nil {
		span.RecordError(err)
		return dto.FinaliseResponse{}, err
	}

	commentText := strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments))
	feedbackComment := commentText
	if feedbackComment == "" {
		feedbackComment = "Assessment finalised."
	}

	now := s.now()
	grade := payload.Grade
	submission.FeedbackHistory = append(submission.FeedbackHistory, models.FeedbackEntry{
		Timestamp:           now,
		Comments:            feedbackComment,
		TrainerEmail:        actor.Email,
		TrainerName:         actor.DisplayName(),
		RequestResubmission: false,
		Grade:               grade,
	})
	submission.Status = models.SubmissionStatusFinalised
	submission.Grade = &grade
	submission.FinalisedAt = &now
	finalisedBy := actor.ID
	submission.FinalisedBy = &finalisedBy
	// A fresh token on every finalisation invalidates previously shared links.
	submission.PublicAccessToken = token
	if submission.StudentName == "" {
		submission.StudentName = s.resolveStudentName(ctx, submission.UserID)
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.FinaliseResponse{}, err
	}

	commentBody := fmt.Sprintf("Assessment has been graded.\n\nGrade: %s", grade)
	if commentText != "" {
		commentBody = fmt.Sprintf("%s\n\nGrade: %s", commentText, grade)
	}
	s.addComment(ctx, models.Comment{
		SubmissionID:   submission.ID,
		Text:           commentBody,
		TrainerID:      actor.ID,
		TrainerName:    actor.DisplayName(),
		IsFinalisation: true,
		Grade:          grade,
	})
	s.recordActivity(ctx, actor, "submission.finalised", submission.ID, map[string]interface{}{"grade": grade})
	s.invalidateCaches(ctx, submission.UserID)

	span.SetAttributes(attribute.String("review.grade", grade))

	s.logger.Info().Uint("submission_id", submission.ID).Str("grade", grade).Msg("submission finalised")

	return dto.FinaliseResponse{
		SubmissionResponse: dto.NewSubmissionResponse(submission),
		PublicURL:          s.publicURL(submission.ID, token),
	}, nil
}

func (s *reviewService) Reopen(ctx context.Context, actor Identity, submissionID uint) (dto.SubmissionResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusFinalised {
		return dto.SubmissionResponse{}, ErrInvalidTransition
	}

	// Grade and access token stay in place; only the status moves back so
	// the student can revise.
	now := s.now()
	submission.FeedbackHistory = append(submission.FeedbackHistory, models.FeedbackEntry{
		Timestamp:           now,
		Comments:            "Assessment reopened for resubmission.",
		TrainerEmail:        actor.Email,
		TrainerName:         actor.DisplayName(),
		RequestResubmission: true,
	})
	submission.Status = models.SubmissionStatusFeedbackProvided

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.recordActivity(ctx, actor, "submission.reopened", submission.ID, nil)
	s.invalidateCaches(ctx, submission.UserID)

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission reopened")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *reviewService) Delete(ctx context.Context, actor Identity, submissionID uint) error {
	if err := requireTrainer(actor); err != nil {
		return err
	}

	submission, err := s.getSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	// Soft delete: no other field changes, recoverable by an administrator.
	submission.Status = models.SubmissionStatusDeleted

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "submission.deleted", submission.ID, nil)
	s.invalidateCaches(ctx, submission.UserID)

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission soft deleted")

	return nil
}

func (s *reviewService) getSubmission(ctx context.Context, submissionID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	if submission.Status == models.SubmissionStatusDeleted {
		return models.Submission{}, ErrSubmissionNotFound
	}

	return submission, nil
}

func (s *reviewService) resolveStudentName(ctx context.Context, userID uint) string {
	if s.users == nil {
		return ""
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.FullName
}

func (s *reviewService) addComment(ctx context.Context, comment models.Comment) {
	if err := s.comments.Create(ctx, &comment); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", comment.SubmissionID).Msg("failed to persist comment")
	}
}

func (s *reviewService) recordActivity(ctx context.Context, actor Identity, action string, submissionID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := submissionID
	if err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record activity")
	}
}

// invalidateCaches drops the review list caches and the affected student's
// cached dashboard; every trainer transition changes what both show.
func (s *reviewService) invalidateCaches(ctx context.Context, studentID uint) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, reviewCacheKeyActive, reviewCacheKeyFinalised).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate review list cache")
		}
	}
	if s.dashboards != nil {
		s.dashboards.InvalidateStudent(ctx, studentID)
	}
}

func (s *reviewService) publicURL(submissionID uint, token string) string {
	return fmt.Sprintf("%s/api/v1/public/assessments/%d?token=%s", s.publicBaseURL, submissionID, token)
}
