package models

import "time"

// User mirrors the identity provider's user record. Authentication itself is
// external; this table only resolves display names and roles.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	StudentID string    `gorm:"size:64" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent may create and edit their own submission.
	RoleStudent = "student"
	// RoleTrainer may author assessments and review submissions.
	RoleTrainer = "trainer"
)
