package repository

import (
	"context"
	"time"

	"github.com/backloghub/engine/internal/models"
	appErr "github.com/backloghub/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BacklogRepository interface {
	BaseRepository[models.Backlog]
	ListAvailable(ctx context.Context, userID uuid.UUID) ([]models.Backlog, error)
}

type backlogRepository struct {
	BaseRepository[models.Backlog]
	db *gorm.DB
}

func NewBacklogRepository(db *gorm.DB) BacklogRepository {
	return &backlogRepository{BaseRepository: NewBaseRepository[models.Backlog](db), db: db}
}

// ListAvailable returns open backlogs the user can still submit against: not
// their own, not already used by one of their projects, deadline in the future.
func (r *backlogRepository) ListAvailable(ctx context.Context, userID uuid.UUID) ([]models.Backlog, error) {
	used := r.db.Model(&models.Project{}).Select("backlog_id").Where("uploaded_by = ?", userID)

	var out []models.Backlog
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BacklogStatusOpen).
		Where("created_by <> ?", userID).
		Where("deadline > ?", time.Now()).
		Where("id NOT IN (?)", used).
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list available backlogs failed")
	}
	return out, nil
}
