package repository

import (
	"context"

	"github.com/backloghub/engine/internal/models"
	appErr "github.com/backloghub/engine/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoterRow is a vote joined with the voter's name. Anonymous votes carry an
// empty name regardless of the underlying user record.
type VoterRow struct {
	models.Vote
	VoterName string `json:"voter_name"`
}

type VoteRepository interface {
	BaseRepository[models.Vote]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]VoterRow, error)
}

type voteRepository struct {
	BaseRepository[models.Vote]
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{BaseRepository: NewBaseRepository[models.Vote](db), db: db}
}

func (r *voteRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]VoterRow, error) {
	var out []VoterRow
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(`votes.*, CASE WHEN votes.vote_mode <> ? THEN users.name ELSE '' END AS voter_name`, models.VoteModeAnonymous).
		Joins("LEFT JOIN users ON users.id = votes.user_id").
		Where("votes.project_id = ?", projectID).
		Order("votes.created_at ASC").
		Scan(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list votes failed")
	}
	return out, nil
}
