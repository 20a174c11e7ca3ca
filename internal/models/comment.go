package models

import "time"

// Comment is a trainer comment attached to a submission. Comments are append
// only; the public view shows finalisation comments exclusively.
type Comment struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	SubmissionID          uint      `gorm:"not null;index" json:"submission_id"`
	Text                  string    `gorm:"type:text;not null" json:"text"`
	TrainerID             uint      `gorm:"not null" json:"trainer_id"`
	TrainerName           string    `gorm:"size:255" json:"trainer_name"`
	IsResubmissionRequest bool      `gorm:"not null;default:false" json:"is_resubmission_request"`
	IsFinalisation        bool      `gorm:"not null;default:false" json:"is_finalisation"`
	Grade                 string    `gorm:"size:32" json:"grade,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}
