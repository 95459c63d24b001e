// Package audit records actions against entities. The sink is injected, and
// logging never affects the caller's control flow.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Verbs and entity types used across the submission workflow.
const (
	VerbCreated  = "created"
	VerbRejected = "rejected"
	VerbVoted    = "voted"

	EntityProject = "project"
	EntityVote    = "vote"
)

// Entry is one auditable action.
type Entry struct {
	ActorID    uuid.UUID
	Verb       string
	EntityType string
	EntityID   uuid.UUID
	Message    string
	Details    map[string]any
}

// Sink accepts audit entries, fire-and-forget.
type Sink interface {
	Log(ctx context.Context, e Entry)
}

type gormSink struct {
	db *gorm.DB
}

// NewSink returns a Sink persisting entries to the audit_logs table.
func NewSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

// Log writes the entry asynchronously. Failures are logged and dropped; the
// primary operation has already committed by the time this runs.
func (s *gormSink) Log(ctx context.Context, e Entry) {
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		var details datatypes.JSON
		if e.Details != nil {
			if b, err := json.Marshal(e.Details); err == nil {
				details = datatypes.JSON(b)
			}
		}

		rec := models.AuditLog{
			ActorID:    e.ActorID,
			Verb:       e.Verb,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Message:    e.Message,
			Details:    details,
		}
		if err := s.db.WithContext(writeCtx).Create(&rec).Error; err != nil {
			logger.L().Warn("audit log write failed",
				zap.String("verb", e.Verb),
				zap.String("entity_type", e.EntityType),
				zap.String("entity_id", e.EntityID.String()),
				zap.Error(err),
			)
		}
	}()
}

// NopSink discards all entries; used in tests.
type NopSink struct{}

func (NopSink) Log(context.Context, Entry) {}
