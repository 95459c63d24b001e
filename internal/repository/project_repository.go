package repository

import (
	"context"
	"time"

	"github.com/backloghub/engine/internal/models"
	appErr "github.com/backloghub/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRow is a project joined with its per-viewer vote counts and the
// uploader's display name.
type ProjectRow struct {
	models.Project
	UploaderName string `json:"uploader_name"`
	TotalVotes   int64  `json:"total_votes"`
	IsVoted      int64  `json:"is_voted"`
}

// ProjectListFilter narrows project listings.
type ProjectListFilter struct {
	// Mine selects the viewer's own projects (pending, approved, completed);
	// otherwise only other users' approved/completed projects are returned.
	Mine      bool
	BacklogID uuid.UUID
	Status    *models.ProjectStatus
	Search    string
	From      *time.Time
	To        *time.Time
}

type ProjectRepository interface {
	BaseRepository[models.Project]
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, viewerID uuid.UUID, f ProjectListFilter) ([]ProjectRow, error)
	GetRow(ctx context.Context, viewerID, id uuid.UUID) (*ProjectRow, error)
	CountByUploader(ctx context.Context, uploaderID uuid.UUID, status *models.ProjectStatus) (int64, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update project fields failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "project not found")
	}
	return nil
}

func (r *projectRepository) rowQuery(ctx context.Context, viewerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Select(`projects.*, users.name AS uploader_name,
			(SELECT COUNT(*) FROM votes WHERE votes.project_id = projects.id AND votes.deleted_at IS NULL) AS total_votes,
			(SELECT COUNT(*) FROM votes WHERE votes.project_id = projects.id AND votes.user_id = ? AND votes.deleted_at IS NULL) AS is_voted`, viewerID).
		Joins("JOIN users ON users.id = projects.uploaded_by")
}

func (r *projectRepository) List(ctx context.Context, viewerID uuid.UUID, f ProjectListFilter) ([]ProjectRow, error) {
	q := r.rowQuery(ctx, viewerID)

	if f.Mine {
		q = q.Where("projects.uploaded_by = ?", viewerID).
			Where("projects.status IN ?", []models.ProjectStatus{models.StatusPending, models.StatusApproved, models.StatusCompleted})
	} else {
		q = q.Where("projects.uploaded_by <> ?", viewerID).
			Where("projects.status IN ?", []models.ProjectStatus{models.StatusApproved, models.StatusCompleted})
	}
	if f.BacklogID != uuid.Nil {
		q = q.Where("projects.backlog_id = ?", f.BacklogID)
	}
	if f.Status != nil {
		q = q.Where("projects.status = ?", *f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("projects.title ILIKE ? OR projects.git_url ILIKE ? OR users.name ILIKE ?", like, like, like)
	}
	if f.From != nil && f.To != nil {
		q = q.Where("projects.created_at BETWEEN ? AND ?", *f.From, *f.To)
	}

	var out []ProjectRow
	if err := q.Order("projects.created_at DESC").Scan(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, nil
}

func (r *projectRepository) GetRow(ctx context.Context, viewerID, id uuid.UUID) (*ProjectRow, error) {
	var row ProjectRow
	err := r.rowQuery(ctx, viewerID).Where("projects.id = ?", id).Scan(&row).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get project row failed")
	}
	if row.ID == uuid.Nil {
		return nil, appErr.New(appErr.CodeNotFound, "project not found")
	}
	return &row, nil
}

func (r *projectRepository) CountByUploader(ctx context.Context, uploaderID uuid.UUID, status *models.ProjectStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("uploaded_by = ?", uploaderID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count projects failed")
	}
	return n, nil
}
