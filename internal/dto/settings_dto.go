package dto

import "github.com/agrilearn/farmbudget-api/internal/models"

// SiteSettingsUpdateRequest edits the course branding text. Nil fields are
// left unchanged.
type SiteSettingsUpdateRequest struct {
	CourseName     *string `json:"course_name" validate:"omitempty,min=1"`
	CourseSubtitle *string `json:"course_subtitle"`
	PageTitle      *string `json:"page_title" validate:"omitempty,min=1"`
}

// SetActiveAssessmentRequest points students at an assessment.
type SetActiveAssessmentRequest struct {
	AssessmentID uint `json:"assessment_id" validate:"required,gt=0"`
}

// SiteSettingsResponse serializes the site settings.
type SiteSettingsResponse struct {
	CourseName         string `json:"course_name"`
	CourseSubtitle     string `json:"course_subtitle"`
	PageTitle          string `json:"page_title"`
	ActiveAssessmentID *uint  `json:"active_assessment_id"`
}

// NewSiteSettingsResponse converts the settings model into a DTO.
func NewSiteSettingsResponse(model models.SiteSettings) SiteSettingsResponse {
	return SiteSettingsResponse{
		CourseName:         model.CourseName,
		CourseSubtitle:     model.CourseSubtitle,
		PageTitle:          model.PageTitle,
		ActiveAssessmentID: model.ActiveAssessmentID,
	}
}
