package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records an action taken against an entity. Writes are
// fire-and-forget; a lost entry never fails the primary operation.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;index" json:"actor_id"`
	Verb       string         `gorm:"type:varchar(32);not null" json:"verb"`
	EntityType string         `gorm:"type:varchar(32);index;not null" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	Message    string         `gorm:"type:text" json:"message"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
