package services

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/backloghub/engine/internal/audit"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/upload"
	appErr "github.com/backloghub/engine/pkg/errors"
)

type projectFixture struct {
	projects *mockProjects
	votes    *mockVotes
	backlogs *mockBacklogs
	users    *mockUsers
	uploads  *mockUploader
	syncer   *mockSyncer
	resolver *mockResolver
	svc      ProjectService
}

func newProjectFixture() *projectFixture {
	f := &projectFixture{
		projects: new(mockProjects),
		votes:    new(mockVotes),
		backlogs: new(mockBacklogs),
		users:    new(mockUsers),
		uploads:  new(mockUploader),
		syncer:   new(mockSyncer),
		resolver: new(mockResolver),
	}
	f.svc = NewProjectService(
		f.projects, f.votes, f.backlogs, f.users,
		f.uploads, f.syncer, f.resolver, audit.NopSink{},
	)
	return f
}

func fakeFiles(n int) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, n)
	for i := range out {
		out[i] = &multipart.FileHeader{Filename: "file.txt", Size: 10}
	}
	return out
}

func expectProject(m *mockProjects, id uuid.UUID, p models.Project) {
	m.On("GetByID", mock.Anything, id, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(2).(*models.Project) = p
	}).Return(nil)
}

func TestSubmitRequiresFiles(t *testing.T) {
	f := newProjectFixture()
	_, err := f.svc.Submit(context.Background(), uuid.New(), &SubmitInput{BacklogID: uuid.New()})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestSubmitUnknownBacklog(t *testing.T) {
	f := newProjectFixture()
	backlogID := uuid.New()
	f.backlogs.On("GetByID", mock.Anything, backlogID, mock.Anything).
		Return(appErr.New(appErr.CodeNotFound, "entity not found"))

	_, err := f.svc.Submit(context.Background(), uuid.New(), &SubmitInput{
		BacklogID: backlogID,
		Files:     fakeFiles(1),
	})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestSubmitSuccess(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()
	backlogID := uuid.New()
	projectID := uuid.New()

	f.backlogs.On("GetByID", mock.Anything, backlogID, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, actorID, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(2).(*models.User) = models.User{ID: actorID, Name: "Ada", GithubUsername: "ada"}
	}).Return(nil)
	f.uploads.On("Store", actorID, mock.Anything).Return(&upload.StoredUpload{
		Folder:     "projects/project_x",
		LocalFiles: []string{"projects/project_x/a.txt", "projects/project_x/b.txt"},
		UploadType: upload.TypeMultiple,
		TotalFiles: 2,
	}, nil)
	f.projects.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(1).(*models.Project)
		p.ID = projectID
	}).Return(nil)
	f.syncer.On("SyncNewProject", mock.Anything, mock.Anything, mock.Anything).Return(SyncReport{
		BranchCreated: true,
		BranchName:    "feature/x",
		Messages:      []string{"Branch 'feature/x' created for development."},
	})

	result, err := f.svc.Submit(context.Background(), actorID, &SubmitInput{
		BacklogID:   backlogID,
		Title:       "Widget importer",
		Description: "Imports widgets",
		GitURL:      "https://github.com/acme/widgets",
		Files:       fakeFiles(2),
	})
	require.NoError(t, err)
	require.Equal(t, projectID, result.ProjectID)
	require.Equal(t,
		"Project created successfully (2 files uploaded locally) Branch 'feature/x' created for development.",
		result.Message)
	require.Equal(t, upload.TypeMultiple, result.FileUploadResults.UploadType)
	require.Equal(t, 2, result.FileUploadResults.TotalFilesProcessed)
	require.Equal(t, 2, result.FileUploadResults.FilesStoredLocally)
	require.Equal(t, "success", result.GithubOperations["branch_creation"])

	created := f.projects.Calls[0].Arguments.Get(1).(*models.Project)
	require.Equal(t, models.StatusPending, created.Status)
	require.Equal(t, "projects/project_x", created.File)
	require.Equal(t, actorID, created.UploadedBy)
}

func TestSubmitGithubTroubleDoesNotFailSubmission(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()
	backlogID := uuid.New()

	f.backlogs.On("GetByID", mock.Anything, backlogID, mock.Anything).Return(nil)
	f.users.On("GetByID", mock.Anything, actorID, mock.Anything).Return(nil)
	f.uploads.On("Store", actorID, mock.Anything).Return(&upload.StoredUpload{
		Folder:     "projects/project_y",
		LocalFiles: []string{"projects/project_y/a.txt"},
		UploadType: upload.TypeSingle,
		TotalFiles: 1,
	}, nil)
	f.projects.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.syncer.On("SyncNewProject", mock.Anything, mock.Anything, mock.Anything).Return(SyncReport{
		CollaborationStatus: models.CollabInvalidGithubURL,
		Warning:             "Invalid GitHub URL format",
		Messages:            []string{"(Warning: Invalid GitHub URL - branch creation skipped)"},
	})

	result, err := f.svc.Submit(context.Background(), actorID, &SubmitInput{
		BacklogID: backlogID,
		Title:     "Widget importer",
		GitURL:    "https://example.com/nope",
		Files:     fakeFiles(1),
	})
	require.NoError(t, err)
	require.Equal(t,
		"Project created successfully (Warning: Invalid GitHub URL - branch creation skipped)",
		result.Message)
	require.Equal(t, "Invalid GitHub URL format", result.GithubOperations["warning"])
}

func TestRejectPendingProject(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()
	projectID := uuid.New()
	expectProject(f.projects, projectID, models.Project{ID: projectID, Status: models.StatusPending})

	f.projects.On("UpdateFields", mock.Anything, projectID,
		map[string]any{"status": models.StatusRejected}).Return(nil)
	pending := models.StatusPending
	f.projects.On("CountByUploader", mock.Anything, actorID, &pending).Return(int64(2), nil)
	f.projects.On("CountByUploader", mock.Anything, actorID, (*models.ProjectStatus)(nil)).Return(int64(5), nil)

	result, err := f.svc.Reject(context.Background(), actorID, projectID)
	require.NoError(t, err)
	require.Equal(t, "rejected", result.Action)
	require.Equal(t, int64(2), result.PendingCount)
	require.Equal(t, int64(5), result.TotalCount)
	f.projects.AssertExpectations(t)
}

func TestRejectTerminalStatuses(t *testing.T) {
	for _, status := range []models.ProjectStatus{models.StatusRejected, models.StatusCompleted} {
		f := newProjectFixture()
		projectID := uuid.New()
		expectProject(f.projects, projectID, models.Project{ID: projectID, Status: status})

		_, err := f.svc.Reject(context.Background(), uuid.New(), projectID)
		require.True(t, appErr.IsCode(err, appErr.CodeInvalid), "status %s", status)

		var e *appErr.AppError
		require.ErrorAs(t, err, &e)
		require.Equal(t, "This project cannot be rejected in its current status", e.Message)
	}
}

func TestRejectMissingProject(t *testing.T) {
	f := newProjectFixture()
	projectID := uuid.New()
	f.projects.On("GetByID", mock.Anything, projectID, mock.Anything).
		Return(appErr.New(appErr.CodeNotFound, "entity not found"))

	_, err := f.svc.Reject(context.Background(), uuid.New(), projectID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	var e *appErr.AppError
	require.ErrorAs(t, err, &e)
	require.Equal(t, "Project not found", e.Message)
}

func TestRecordVoteOwnProjectForbidden(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()
	projectID := uuid.New()
	expectProject(f.projects, projectID,
		models.Project{ID: projectID, UploadedBy: actorID, Status: models.StatusApproved})

	err := f.svc.RecordVote(context.Background(), actorID, &VoteInput{ProjectID: projectID, VoteType: "up"})
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
	f.votes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordVoteCompletedProjectClosed(t *testing.T) {
	f := newProjectFixture()
	projectID := uuid.New()
	expectProject(f.projects, projectID,
		models.Project{ID: projectID, UploadedBy: uuid.New(), Status: models.StatusCompleted})

	err := f.svc.RecordVote(context.Background(), uuid.New(), &VoteInput{ProjectID: projectID, VoteType: "up"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestRecordVoteSuccess(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()
	projectID := uuid.New()
	expectProject(f.projects, projectID,
		models.Project{ID: projectID, UploadedBy: uuid.New(), Status: models.StatusApproved})

	f.votes.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RecordVote(context.Background(), actorID, &VoteInput{
		ProjectID: projectID,
		VoteType:  "up",
		VoteMode:  models.VoteModeAnonymous,
		Comment:   "nice",
	})
	require.NoError(t, err)

	vote := f.votes.Calls[0].Arguments.Get(1).(*models.Vote)
	require.Equal(t, actorID, vote.UserID)
	require.Equal(t, models.VoteModeAnonymous, vote.VoteMode)
	require.Equal(t, "nice", vote.Comment)
}

func TestProjectFilesVisibility(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name    string
		viewer  uuid.UUID
		status  models.ProjectStatus
		allowed bool
	}{
		{"owner pending", owner, models.StatusPending, true},
		{"owner rejected", owner, models.StatusRejected, true},
		{"other pending", other, models.StatusPending, false},
		{"other rejected", other, models.StatusRejected, false},
		{"other approved", other, models.StatusApproved, true},
		{"other completed", other, models.StatusCompleted, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newProjectFixture()
			projectID := uuid.New()
			expectProject(f.projects, projectID,
				models.Project{ID: projectID, UploadedBy: owner, Status: tc.status, Title: "p"})
			f.resolver.On("Resolve", mock.Anything, mock.Anything).
				Return([]models.FileEntry{{Name: "a.txt"}}, SourceLocal)

			result, err := f.svc.ProjectFiles(context.Background(), tc.viewer, projectID)
			if !tc.allowed {
				require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
				return
			}
			require.NoError(t, err)
			require.Equal(t, SourceLocal, result.Project.Source)
			require.Len(t, result.Files, 1)
		})
	}
}

func TestProjectFilesNeverNil(t *testing.T) {
	f := newProjectFixture()
	owner := uuid.New()
	projectID := uuid.New()
	expectProject(f.projects, projectID,
		models.Project{ID: projectID, UploadedBy: owner, Status: models.StatusPending})
	f.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, SourceLocal)

	result, err := f.svc.ProjectFiles(context.Background(), owner, projectID)
	require.NoError(t, err)
	require.NotNil(t, result.Files)
	require.Empty(t, result.Files)
}

func TestStatsCollectsPerStatusCounts(t *testing.T) {
	f := newProjectFixture()
	actorID := uuid.New()

	f.projects.On("CountByUploader", mock.Anything, actorID, (*models.ProjectStatus)(nil)).Return(int64(10), nil)
	for status, n := range map[models.ProjectStatus]int64{
		models.StatusPending:  int64(3),
		models.StatusApproved: int64(5),
		models.StatusRejected: int64(2),
	} {
		s := status
		f.projects.On("CountByUploader", mock.Anything, actorID, &s).Return(n, nil)
	}

	stats, err := f.svc.Stats(context.Background(), actorID)
	require.NoError(t, err)
	require.Equal(t, int64(10), stats.TotalProjects)
	require.Equal(t, int64(3), stats.PendingProjects)
	require.Equal(t, int64(5), stats.ApprovedProjects)
	require.Equal(t, int64(2), stats.RejectedProjects)
}
