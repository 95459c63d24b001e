package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/repository"
	"github.com/backloghub/engine/internal/services"
)

// stubProjectService records inputs and plays back canned results.
type stubProjectService struct {
	submitInput  *services.SubmitInput
	submitResult *services.SubmitResult
	submitErr    error

	rejectID     uuid.UUID
	rejectResult *services.RejectResult
	rejectErr    error

	voteInput *services.VoteInput
	voteErr   error

	voters    []repository.VoterRow
	votersErr error

	filesResult *services.ProjectFilesResult
	filesErr    error

	viewRow *repository.ProjectRow
	viewErr error

	listFilter repository.ProjectListFilter
	listRows   []repository.ProjectRow
	listErr    error

	stats    *services.Stats
	statsErr error

	backlogs    []models.Backlog
	backlogsErr error
}

var _ services.ProjectService = (*stubProjectService)(nil)

func (s *stubProjectService) Submit(ctx context.Context, actorID uuid.UUID, input *services.SubmitInput) (*services.SubmitResult, error) {
	s.submitInput = input
	return s.submitResult, s.submitErr
}

func (s *stubProjectService) Reject(ctx context.Context, actorID, projectID uuid.UUID) (*services.RejectResult, error) {
	s.rejectID = projectID
	return s.rejectResult, s.rejectErr
}

func (s *stubProjectService) RecordVote(ctx context.Context, actorID uuid.UUID, input *services.VoteInput) error {
	s.voteInput = input
	return s.voteErr
}

func (s *stubProjectService) VoterList(ctx context.Context, projectID uuid.UUID) ([]repository.VoterRow, error) {
	return s.voters, s.votersErr
}

func (s *stubProjectService) ProjectFiles(ctx context.Context, actorID, projectID uuid.UUID) (*services.ProjectFilesResult, error) {
	return s.filesResult, s.filesErr
}

func (s *stubProjectService) View(ctx context.Context, actorID, projectID uuid.UUID) (*repository.ProjectRow, error) {
	return s.viewRow, s.viewErr
}

func (s *stubProjectService) List(ctx context.Context, actorID uuid.UUID, filter repository.ProjectListFilter) ([]repository.ProjectRow, error) {
	s.listFilter = filter
	return s.listRows, s.listErr
}

func (s *stubProjectService) Stats(ctx context.Context, actorID uuid.UUID) (*services.Stats, error) {
	return s.stats, s.statsErr
}

func (s *stubProjectService) AvailableBacklogs(ctx context.Context, actorID uuid.UUID) ([]models.Backlog, error) {
	return s.backlogs, s.backlogsErr
}
