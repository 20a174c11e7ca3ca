package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

// SubmissionService drives the student side of the submission lifecycle:
// creating a draft against the active assessment, saving progress and
// submitting for review.
type SubmissionService interface {
	CreateOrLoad(ctx context.Context, actor Identity) (dto.SubmissionResponse, error)
	SaveDraft(ctx context.Context, actor Identity, payload dto.SubmissionSaveRequest) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, actor Identity, payload dto.SubmissionSaveRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	settings    repository.SettingsRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	dashboards  DashboardInvalidator
	logger      zerolog.Logger
	now         func() time.Time
	randIndex   func(n int) int
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, assessmentRepo repository.AssessmentRepository, settingsRepo repository.SettingsRepository, validate *validator.Validate, dashboards DashboardInvalidator, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assessments: assessmentRepo,
		settings:    settingsRepo,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		dashboards:  dashboards,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
		randIndex:   rand.Intn,
	}
}

func (s *submissionService) CreateOrLoad(ctx context.Context, actor Identity) (dto.SubmissionResponse, error) {
	if err := requireStudent(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.activeAssessment(ctx)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadOrCreate(ctx, actor, assessment)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) SaveDraft(ctx context.Context, actor Identity, payload dto.SubmissionSaveRequest) (dto.SubmissionResponse, error) {
	if err := requireStudent(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.activeAssessment(ctx)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadOrCreate(ctx, actor, assessment)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !submission.Editable() {
		return dto.SubmissionResponse{}, ErrSubmissionLocked
	}

	now := s.now()
	submission.Budget = payload.Budget.ToBudget()
	submission.Answers = s.sanitizeAnswers(payload.Answers)
	submission.LastSaved = &now

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidateDashboard(ctx, submission.UserID)

	s.logger.Info().Uint("submission_id", submission.ID).Msg("draft saved")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Submit(ctx context.Context, actor Identity, payload dto.SubmissionSaveRequest) (dto.SubmissionResponse, error) {
	if err := requireStudent(actor); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.activeAssessment(ctx)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadOrCreate(ctx, actor, assessment)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !submission.Editable() {
		return dto.SubmissionResponse{}, ErrSubmissionLocked
	}

	budget := payload.Budget.ToBudget()
	answers := s.sanitizeAnswers(payload.Answers)

	if err := validateForSubmit(budget, answers, assessment.Questions); err != nil {
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	submission.Budget = budget
	submission.Answers = answers
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &now
	submission.LastSaved = &now
	// Stale feedback from an earlier round must not show on the fresh
	// submission; the history itself is append-only and kept.
	submission.Feedback = ""

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidateDashboard(ctx, submission.UserID)

	s.logger.Info().Uint("submission_id", submission.ID).Float64("net_result", submission.Budget.NetResult).Msg("submission submitted")

	return dto.NewSubmissionResponse(submission), nil
}

// activeAssessment resolves the assessment the student flow operates on.
func (s *submissionService) activeAssessment(ctx context.Context) (models.Assessment, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.Assessment{}, err
	}

	if settings.ActiveAssessmentID == nil {
		return models.Assessment{}, ErrNoActiveAssessment
	}

	assessment, err := s.assessments.GetByID(ctx, *settings.ActiveAssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}

	if !assessment.Published {
		return models.Assessment{}, ErrAssessmentNotPublished
	}

	return assessment, nil
}

func (s *submissionService) loadOrCreate(ctx context.Context, actor Identity, assessment models.Assessment) (models.Submission, error) {
	submission, err := s.submissions.GetByUserAndAssessment(ctx, actor.ID, assessment.ID)
	if err == nil {
		if submission.Status == models.SubmissionStatusDeleted {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return submission, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Submission{}, err
	}

	submission = models.Submission{
		UserID:       actor.ID,
		UserEmail:    actor.Email,
		AssessmentID: assessment.ID,
		Scenario:     s.assignScenario(assessment),
		Answers:      map[string]string{},
		Status:       models.SubmissionStatusSaved,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, err
	}

	submission.Assessment = assessment
	s.invalidateDashboard(ctx, submission.UserID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("scenario_id", submission.Scenario.ID).
		Msg("submission created")

	return submission, nil
}

// assignScenario picks uniformly at random among the assessment's scenarios.
// It runs only at creation; a stored scenario is never replaced.
func (s *submissionService) assignScenario(assessment models.Assessment) models.Scenario {
	if len(assessment.Scenarios) == 0 {
		return models.DefaultScenario()
	}
	return assessment.Scenarios[s.randIndex(len(assessment.Scenarios))]
}

func (s *submissionService) invalidateDashboard(ctx context.Context, userID uint) {
	if s.dashboards == nil {
		return
	}
	s.dashboards.InvalidateStudent(ctx, userID)
}

func (s *submissionService) sanitizeAnswers(answers map[string]string) map[string]string {
	sanitized := make(map[string]string, len(answers))
	for key, value := range answers {
		sanitized[key] = strings.TrimSpace(s.sanitizer.Sanitize(value))
	}
	return sanitized
}

// validateForSubmit checks the submit preconditions and reports the first
// failing one: income rows, then expense rows, then unanswered questions in
// their authored order.
func validateForSubmit(budget models.Budget, answers map[string]string, questions []models.Question) error {
	if !budget.HasValidIncome() {
		return newValidationError("Please add at least one income item with a name, quantity, and price greater than zero.")
	}

	if !budget.HasValidExpense() {
		return newValidationError("Please add at least one expense item with a name, quantity, and price greater than zero.")
	}

	for idx := range questions {
		if strings.TrimSpace(answers[models.AnswerKey(idx)]) == "" {
			return newValidationError(fmt.Sprintf("Please answer all questions. Question %d is empty.", idx+1))
		}
	}

	return nil
}

func requireStudent(actor Identity) error {
	if actor.Role != models.RoleStudent {
		return ErrPermissionDenied
	}
	return nil
}

func requireTrainer(actor Identity) error {
	if actor.Role != models.RoleTrainer {
		return ErrPermissionDenied
	}
	return nil
}
