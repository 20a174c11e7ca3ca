package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

// PublicService serves finalised submissions to unauthenticated viewers
// holding a valid share token.
type PublicService interface {
	View(ctx context.Context, submissionID uint, token string) (dto.PublicSubmissionResponse, error)
}

type publicService struct {
	submissions repository.SubmissionRepository
	comments    repository.CommentRepository
	logger      zerolog.Logger
}

// NewPublicService constructs the token-gated public view service.
func NewPublicService(subRepo repository.SubmissionRepository, commentRepo repository.CommentRepository, logger zerolog.Logger) PublicService {
	return &publicService{
		submissions: subRepo,
		comments:    commentRepo,
		logger:      logger.With().Str("component", "public_service").Logger(),
	}
}

// View returns the public projection of a finalised submission. Every
// failure mode collapses into ErrPublicViewRejected so callers cannot
// distinguish a missing submission from a bad token.
func (s *publicService) View(ctx context.Context, submissionID uint, token string) (dto.PublicSubmissionResponse, error) {
	if token == "" {
		return dto.PublicSubmissionResponse{}, ErrPublicViewRejected
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublicSubmissionResponse{}, ErrPublicViewRejected
		}
		return dto.PublicSubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusFinalised {
		return dto.PublicSubmissionResponse{}, ErrPublicViewRejected
	}
	if submission.PublicAccessToken == "" {
		return dto.PublicSubmissionResponse{}, ErrPublicViewRejected
	}
	if subtle.ConstantTimeCompare([]byte(submission.PublicAccessToken), []byte(token)) != 1 {
		s.logger.Warn().Uint("submission_id", submissionID).Msg("public view rejected: token mismatch")
		return dto.PublicSubmissionResponse{}, ErrPublicViewRejected
	}

	comments, err := s.comments.ListBySubmission(ctx, submission.ID)
	if err != nil {
		return dto.PublicSubmissionResponse{}, err
	}

	return dto.NewPublicSubmissionResponse(submission, comments), nil
}
