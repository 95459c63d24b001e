package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a user submission against a backlog item.
//
// GithubBranch is only ever set after a branch-creation call reported success;
// GithubRepo may be set alone when branch creation failed.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BacklogID   uuid.UUID `gorm:"type:uuid;index;not null" json:"backlog_id" validate:"required"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;index;not null" json:"uploaded_by" validate:"required"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title" validate:"required,max=100"`
	Description string    `gorm:"type:varchar(255)" json:"description" validate:"max=255"`
	GitURL      string    `gorm:"type:varchar(255);not null" json:"git_url" validate:"required,max=255"`

	// File is the locally stored upload path (a directory or a single
	// archive), relative to the configured upload root.
	File string `gorm:"type:varchar(255)" json:"file"`

	Status              ProjectStatus       `gorm:"type:varchar(1);index;not null" json:"status"`
	GithubRepo          string              `gorm:"type:varchar(255)" json:"github_repo"`
	GithubBranch        string              `gorm:"type:varchar(255)" json:"github_branch"`
	CollaborationStatus CollaborationStatus `gorm:"type:varchar(32)" json:"collaboration_status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
