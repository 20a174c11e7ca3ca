package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agrilearn/farmbudget-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries. Deleted submissions
// are excluded unless IncludeDeleted is set.
type SubmissionFilter struct {
	AssessmentID   *uint
	UserID         *uint
	Statuses       []string
	IncludeDeleted bool
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assessment")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filter.AssessmentID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	} else if !filter.IncludeDeleted {
		query = query.Where("status <> ?", models.SubmissionStatusDeleted)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	for idx := range submissions {
		submissions[idx].Budget.NormalizeLegacy()
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	submission.Budget.NormalizeLegacy()

	return submission, nil
}

func (r *submissionRepository) GetByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("user_id = ?", userID).
		Where("assessment_id = ?", assessmentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	submission.Budget.NormalizeLegacy()

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// Update persists the whole record in a single write so a failed call never
// leaves a transition partially applied.
func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
