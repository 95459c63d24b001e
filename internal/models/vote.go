package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote modes. Anonymous votes never expose the voter's name in listings.
const (
	VoteModeNamed     = "named"
	VoteModeAnonymous = "anonymous"
)

// Vote is a peer vote on a project. The model intentionally enforces no
// per-user uniqueness; the read side exposes an is_voted count instead.
type Vote struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	VoteType  string         `gorm:"type:varchar(32);not null" json:"vote_type" validate:"required"`
	VoteMode  string         `gorm:"type:varchar(16);not null" json:"vote_mode" validate:"required,oneof=named anonymous"`
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
