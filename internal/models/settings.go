package models

import "time"

// SiteSettings holds the course branding text trainers can edit. A single row
// with a fixed primary key.
type SiteSettings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CourseName     string    `gorm:"size:255" json:"course_name"`
	CourseSubtitle string    `gorm:"size:255" json:"course_subtitle"`
	PageTitle      string    `gorm:"size:255" json:"page_title"`
	// ActiveAssessmentID names the assessment students currently see.
	ActiveAssessmentID *uint     `json:"active_assessment_id"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SiteSettingsID is the fixed key of the singleton settings row.
const SiteSettingsID uint = 1

// DefaultSiteSettings returns the branding used before a trainer customises it.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:             SiteSettingsID,
		CourseName:     "Farm Budget Training",
		CourseSubtitle: "Agricultural budgeting assessment",
		PageTitle:      "Farm Budget Assessment",
	}
}
