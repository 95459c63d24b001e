package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BacklogStatusOpen marks a backlog as accepting project submissions.
const BacklogStatusOpen = 2

// Backlog is a work item users can submit a project against.
type Backlog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string         `gorm:"not null" json:"title" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Status      int            `gorm:"index;not null" json:"status"`
	Deadline    time.Time      `gorm:"index" json:"deadline"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;index;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
