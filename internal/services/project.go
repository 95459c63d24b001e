package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/backloghub/engine/internal/audit"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/repository"
	"github.com/backloghub/engine/internal/upload"
	appErr "github.com/backloghub/engine/pkg/errors"
	"github.com/backloghub/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader stores multipart uploads on local disk.
type Uploader interface {
	Store(ownerID uuid.UUID, files []*multipart.FileHeader) (*upload.StoredUpload, error)
}

// SubmitInput carries a validated project submission.
type SubmitInput struct {
	BacklogID   uuid.UUID
	Title       string
	Description string
	GitURL      string
	Files       []*multipart.FileHeader
}

// FileUploadResults reports what landed on local disk.
type FileUploadResults struct {
	UploadType          string `json:"upload_type"`
	TotalFilesProcessed int    `json:"total_files_processed"`
	FilesStoredLocally  int    `json:"files_stored_locally"`
}

// SubmitResult is the submit response payload. GithubOperations carries the
// best-effort provisioning outcome, including warnings.
type SubmitResult struct {
	ProjectID         uuid.UUID         `json:"project_id"`
	Message           string            `json:"message"`
	GithubOperations  map[string]any    `json:"github_operations"`
	FileUploadResults FileUploadResults `json:"file_upload_results"`
}

// RejectResult is the reject response payload with refreshed counts for the
// acting user.
type RejectResult struct {
	ProjectID    uuid.UUID `json:"project_id"`
	PendingCount int64     `json:"pending_count"`
	TotalCount   int64     `json:"total_count"`
	Action       string    `json:"action"`
}

// VoteInput carries a vote submission.
type VoteInput struct {
	ProjectID uuid.UUID
	VoteType  string
	VoteMode  string
	Comment   string
}

// ProjectSummary is the compact project header returned with file listings.
type ProjectSummary struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	Source      string               `json:"source"`
}

// ProjectFilesResult is the file-listing response payload.
type ProjectFilesResult struct {
	Project ProjectSummary     `json:"project"`
	Files   []models.FileEntry `json:"files"`
}

// Stats aggregates a user's submission counts.
type Stats struct {
	TotalProjects    int64 `json:"total_projects"`
	PendingProjects  int64 `json:"pending_projects"`
	ApprovedProjects int64 `json:"approved_projects"`
	RejectedProjects int64 `json:"rejected_projects"`
}

// ProjectService is the project lifecycle: submission, rejection, voting, and
// visibility-checked reads.
type ProjectService interface {
	Submit(ctx context.Context, actorID uuid.UUID, input *SubmitInput) (*SubmitResult, error)
	Reject(ctx context.Context, actorID, projectID uuid.UUID) (*RejectResult, error)
	RecordVote(ctx context.Context, actorID uuid.UUID, input *VoteInput) error
	VoterList(ctx context.Context, projectID uuid.UUID) ([]repository.VoterRow, error)
	ProjectFiles(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectFilesResult, error)
	View(ctx context.Context, actorID, projectID uuid.UUID) (*repository.ProjectRow, error)
	List(ctx context.Context, actorID uuid.UUID, filter repository.ProjectListFilter) ([]repository.ProjectRow, error)
	Stats(ctx context.Context, actorID uuid.UUID) (*Stats, error)
	AvailableBacklogs(ctx context.Context, actorID uuid.UUID) ([]models.Backlog, error)
}

type projectService struct {
	projects repository.ProjectRepository
	votes    repository.VoteRepository
	backlogs repository.BacklogRepository
	users    repository.UserRepository
	uploads  Uploader
	sync     Syncer
	files    FileResolver
	audit    audit.Sink
}

func NewProjectService(
	projects repository.ProjectRepository,
	votes repository.VoteRepository,
	backlogs repository.BacklogRepository,
	users repository.UserRepository,
	uploads Uploader,
	sync Syncer,
	files FileResolver,
	sink audit.Sink,
) ProjectService {
	return &projectService{
		projects: projects,
		votes:    votes,
		backlogs: backlogs,
		users:    users,
		uploads:  uploads,
		sync:     sync,
		files:    files,
		audit:    sink,
	}
}

var _ ProjectService = (*projectService)(nil)

// Submit creates a pending project, stores its files locally, and runs the
// GitHub provisioning workflow best-effort. GitHub trouble surfaces as
// warnings in the result, never as an error.
func (s *projectService) Submit(ctx context.Context, actorID uuid.UUID, input *SubmitInput) (*SubmitResult, error) {
	if len(input.Files) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "at least one project file is required")
	}

	var backlog models.Backlog
	if err := s.backlogs.GetByID(ctx, input.BacklogID, &backlog); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeInvalid, "backlog not found")
		}
		return nil, err
	}

	var user models.User
	if err := s.users.GetByID(ctx, actorID, &user); err != nil {
		return nil, err
	}

	stored, err := s.uploads.Store(actorID, input.Files)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		BacklogID:           input.BacklogID,
		UploadedBy:          actorID,
		Title:               input.Title,
		Description:         input.Description,
		GitURL:              input.GitURL,
		File:                stored.Folder,
		Status:              models.StatusPending,
		CollaborationStatus: models.CollabNone,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	logger.L().Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", actorID.String()),
		zap.String("upload_type", stored.UploadType),
		zap.Int("files_stored", len(stored.LocalFiles)),
	)

	message := "Project created successfully"
	if len(stored.LocalFiles) > 1 {
		message += fmt.Sprintf(" (%d files uploaded locally)", stored.TotalFiles)
	}

	report := s.sync.SyncNewProject(ctx, project, &user)
	if len(report.Messages) > 0 {
		message += " " + strings.Join(report.Messages, " ")
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID:    actorID,
		Verb:       audit.VerbCreated,
		EntityType: audit.EntityProject,
		EntityID:   project.ID,
		Message: fmt.Sprintf("Project id '%s' was created with %d files stored locally.",
			project.ID, len(stored.LocalFiles)),
		Details: map[string]any{
			"collaboration_status": project.CollaborationStatus,
			"github_branch":        project.GithubBranch,
			"github_repo":          project.GithubRepo,
		},
	})

	return &SubmitResult{
		ProjectID:        project.ID,
		Message:          message,
		GithubOperations: report.Operations(),
		FileUploadResults: FileUploadResults{
			UploadType:          stored.UploadType,
			TotalFilesProcessed: stored.TotalFiles,
			FilesStoredLocally:  len(stored.LocalFiles),
		},
	}, nil
}

// Reject moves a project to Rejected. Only Pending and Approved projects can
// be rejected; the transition table forbids everything else.
func (s *projectService) Reject(ctx context.Context, actorID, projectID uuid.UUID) (*RejectResult, error) {
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "Project not found")
		}
		return nil, err
	}

	if !project.Status.CanTransition(models.StatusRejected) {
		return nil, appErr.New(appErr.CodeInvalid, "This project cannot be rejected in its current status")
	}

	if err := s.projects.UpdateFields(ctx, projectID, map[string]any{"status": models.StatusRejected}); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID:    actorID,
		Verb:       audit.VerbRejected,
		EntityType: audit.EntityProject,
		EntityID:   projectID,
		Message:    fmt.Sprintf("Project id '%s' was rejected by user.", projectID),
	})

	pendingStatus := models.StatusPending
	pending, err := s.projects.CountByUploader(ctx, actorID, &pendingStatus)
	if err != nil {
		return nil, err
	}
	total, err := s.projects.CountByUploader(ctx, actorID, nil)
	if err != nil {
		return nil, err
	}

	return &RejectResult{
		ProjectID:    projectID,
		PendingCount: pending,
		TotalCount:   total,
		Action:       "rejected",
	}, nil
}

// RecordVote stores a vote. Voting on one's own project or on a completed
// project is refused; duplicate votes by the same user are not prevented.
func (s *projectService) RecordVote(ctx context.Context, actorID uuid.UUID, input *VoteInput) error {
	var project models.Project
	if err := s.projects.GetByID(ctx, input.ProjectID, &project); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return appErr.New(appErr.CodeNotFound, "Project not found")
		}
		return err
	}

	if project.UploadedBy == actorID {
		return appErr.New(appErr.CodeForbidden, "You cannot vote on your own project")
	}
	if project.Status == models.StatusCompleted {
		return appErr.New(appErr.CodeInvalid, "Voting is closed for completed projects")
	}

	vote := &models.Vote{
		ProjectID: input.ProjectID,
		UserID:    actorID,
		VoteType:  input.VoteType,
		VoteMode:  input.VoteMode,
		Comment:   input.Comment,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		ActorID:    actorID,
		Verb:       audit.VerbVoted,
		EntityType: audit.EntityVote,
		EntityID:   vote.ID,
		Message:    "Vote cast on the project.",
	})
	return nil
}

func (s *projectService) VoterList(ctx context.Context, projectID uuid.UUID) ([]repository.VoterRow, error) {
	return s.votes.ListByProject(ctx, projectID)
}

// ProjectFiles resolves the displayable file listing. The uploader can always
// see their own files; everyone else only once the project is approved or
// completed.
func (s *projectService) ProjectFiles(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectFilesResult, error) {
	var project models.Project
	if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "Project not found")
		}
		return nil, err
	}

	if project.UploadedBy != actorID &&
		project.Status != models.StatusApproved && project.Status != models.StatusCompleted {
		return nil, appErr.New(appErr.CodeForbidden, "You do not have permission to view this project")
	}

	files, source := s.files.Resolve(ctx, &project)
	if files == nil {
		files = []models.FileEntry{}
	}

	return &ProjectFilesResult{
		Project: ProjectSummary{
			ID:          project.ID,
			Title:       project.Title,
			Description: project.Description,
			Status:      project.Status,
			Source:      source,
		},
		Files: files,
	}, nil
}

func (s *projectService) View(ctx context.Context, actorID, projectID uuid.UUID) (*repository.ProjectRow, error) {
	row, err := s.projects.GetRow(ctx, actorID, projectID)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "Project not found")
		}
		return nil, err
	}
	return row, nil
}

func (s *projectService) List(ctx context.Context, actorID uuid.UUID, filter repository.ProjectListFilter) ([]repository.ProjectRow, error) {
	return s.projects.List(ctx, actorID, filter)
}

func (s *projectService) Stats(ctx context.Context, actorID uuid.UUID) (*Stats, error) {
	out := &Stats{}
	var err error
	if out.TotalProjects, err = s.projects.CountByUploader(ctx, actorID, nil); err != nil {
		return nil, err
	}
	for _, c := range []struct {
		status models.ProjectStatus
		dest   *int64
	}{
		{models.StatusPending, &out.PendingProjects},
		{models.StatusApproved, &out.ApprovedProjects},
		{models.StatusRejected, &out.RejectedProjects},
	} {
		status := c.status
		if *c.dest, err = s.projects.CountByUploader(ctx, actorID, &status); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *projectService) AvailableBacklogs(ctx context.Context, actorID uuid.UUID) ([]models.Backlog, error) {
	return s.backlogs.ListAvailable(ctx, actorID)
}
