package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/dto"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
)

// AssessmentService manages assessment definitions: trainer authoring and the
// published view students receive.
type AssessmentService interface {
	List(ctx context.Context, actor Identity) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, actor Identity, assessmentID uint) (dto.AssessmentResponse, error)
	Create(ctx context.Context, actor Identity, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	Update(ctx context.Context, actor Identity, assessmentID uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	Publish(ctx context.Context, actor Identity, assessmentID uint) (dto.AssessmentResponse, error)
	StudentView(ctx context.Context, actor Identity, assessmentID uint) (dto.StudentAssessmentResponse, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

// NewAssessmentService constructs the assessment definition service.
func NewAssessmentService(repo repository.AssessmentRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: repo,
		validator:   validate,
		activity:    activity,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

func (s *assessmentService) List(ctx context.Context, actor Identity) ([]dto.AssessmentResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return nil, err
	}

	assessments, err := s.assessments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}

func (s *assessmentService) Get(ctx context.Context, actor Identity, assessmentID uint) (dto.AssessmentResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getAssessment(ctx, assessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Create(ctx context.Context, actor Identity, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.AssessmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment := models.Assessment{
		Title:                payload.Title,
		Description:          payload.Description,
		Instructions:         payload.Instructions,
		BudgetInstructions:   payload.BudgetInstructions,
		AnalysisInstructions: payload.AnalysisInstructions,
		Questions:            s.buildQuestions(payload.Questions),
		Scenarios:            s.buildScenarios(payload.Scenarios),
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assessment.created", assessment.ID, nil)
	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment created")

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Update(ctx context.Context, actor Identity, assessmentID uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.AssessmentResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getAssessment(ctx, assessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	if payload.Title != nil {
		assessment.Title = *payload.Title
	}
	if payload.Description != nil {
		assessment.Description = *payload.Description
	}
	if payload.Instructions != nil {
		assessment.Instructions = *payload.Instructions
	}
	if payload.BudgetInstructions != nil {
		assessment.BudgetInstructions = *payload.BudgetInstructions
	}
	if payload.AnalysisInstructions != nil {
		assessment.AnalysisInstructions = *payload.AnalysisInstructions
	}
	if payload.Questions != nil {
		assessment.Questions = s.buildQuestions(*payload.Questions)
	}
	if payload.Scenarios != nil {
		assessment.Scenarios = s.buildScenarios(*payload.Scenarios)
	}

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assessment.updated", assessment.ID, nil)

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Publish(ctx context.Context, actor Identity, assessmentID uint) (dto.AssessmentResponse, error) {
	if err := requireTrainer(actor); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.getAssessment(ctx, assessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	if !assessment.Published {
		now := s.now()
		publishedBy := actor.ID
		assessment.Published = true
		assessment.PublishedAt = &now
		assessment.PublishedBy = &publishedBy

		if err := s.assessments.Update(ctx, &assessment); err != nil {
			return dto.AssessmentResponse{}, err
		}

		s.recordActivity(ctx, actor, "assessment.published", assessment.ID, nil)
		s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment published")
	}

	return dto.NewAssessmentResponse(assessment), nil
}

// StudentView returns the published definition without its scenario list.
func (s *assessmentService) StudentView(ctx context.Context, actor Identity, assessmentID uint) (dto.StudentAssessmentResponse, error) {
	if err := requireStudent(actor); err != nil {
		return dto.StudentAssessmentResponse{}, err
	}

	assessment, err := s.getAssessment(ctx, assessmentID)
	if err != nil {
		return dto.StudentAssessmentResponse{}, err
	}

	if !assessment.Published {
		return dto.StudentAssessmentResponse{}, ErrAssessmentNotPublished
	}

	return dto.NewStudentAssessmentResponse(assessment), nil
}

func (s *assessmentService) getAssessment(ctx context.Context, assessmentID uint) (models.Assessment, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}

	return assessment, nil
}

// buildQuestions preserves authored order and assigns IDs where the editor
// left them blank.
func (s *assessmentService) buildQuestions(inputs []dto.QuestionInput) []models.Question {
	questions := make([]models.Question, 0, len(inputs))
	for _, input := range inputs {
		id := input.ID
		if id == "" {
			id = s.newID()
		}
		questions = append(questions, models.Question{ID: id, Text: input.Text})
	}
	return questions
}

func (s *assessmentService) buildScenarios(inputs []dto.ScenarioInput) []models.Scenario {
	scenarios := make([]models.Scenario, 0, len(inputs))
	for _, input := range inputs {
		id := input.ID
		if id == "" {
			id = s.newID()
		}
		scenarios = append(scenarios, models.Scenario{
			ID:          id,
			Title:       input.Title,
			Description: input.Description,
		})
	}
	return scenarios
}

func (s *assessmentService) recordActivity(ctx context.Context, actor Identity, action string, assessmentID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := assessmentID
	if err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assessment",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record activity")
	}
}
