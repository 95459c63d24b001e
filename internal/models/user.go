package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform user. GithubUsername links the account to GitHub
// for collaborator invitations; it may be empty.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash   string         `gorm:"not null" json:"-"`
	Name           string         `gorm:"not null" json:"name" validate:"required"`
	GithubUsername string         `gorm:"type:varchar(64)" json:"github_username"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
