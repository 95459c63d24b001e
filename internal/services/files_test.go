package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/upload"
)

type stubDiff struct {
	entries []models.FileEntry
	called  bool
}

func (s *stubDiff) ResolveUserFiles(ctx context.Context, repo, base, userBranch string) []models.FileEntry {
	s.called = true
	return s.entries
}

func newTestFileSource(t *testing.T, diff *stubDiff) (*FileSource, *upload.Service, string) {
	t.Helper()
	root := t.TempDir()
	uploads := upload.NewService(root, 100, 1<<20)
	return NewFileSource(diff, uploads, "main"), uploads, root
}

func TestResolvePrefersGithubForApprovedProjects(t *testing.T) {
	diff := &stubDiff{entries: []models.FileEntry{{Name: "main.go", Type: models.FileEntryFile}}}
	src, _, _ := newTestFileSource(t, diff)

	project := &models.Project{
		ID:           uuid.New(),
		Status:       models.StatusApproved,
		GithubRepo:   "widgets",
		GithubBranch: "feature/x",
	}
	entries, source := src.Resolve(context.Background(), project)

	require.True(t, diff.called)
	require.Equal(t, SourceGitHub, source)
	require.Len(t, entries, 1)
	require.Equal(t, "main.go", entries[0].Name)
}

func TestResolveFallsBackToLocalOnEmptyDiff(t *testing.T) {
	diff := &stubDiff{}
	src, _, root := newTestFileSource(t, diff)

	folder := filepath.Join(root, "projects", "p1")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "readme.md"), []byte("# hi"), 0o644))

	project := &models.Project{
		ID:         uuid.New(),
		Status:     models.StatusApproved,
		GithubRepo: "widgets",
		File:       "projects/p1",
	}
	entries, source := src.Resolve(context.Background(), project)

	require.True(t, diff.called)
	require.Equal(t, SourceLocal, source)
	require.Len(t, entries, 1)
	require.Equal(t, "readme.md", entries[0].Name)
}

func TestResolveSkipsGithubForPendingProjects(t *testing.T) {
	diff := &stubDiff{entries: []models.FileEntry{{Name: "main.go"}}}
	src, _, root := newTestFileSource(t, diff)

	folder := filepath.Join(root, "projects", "p2")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("draft"), 0o644))

	project := &models.Project{
		ID:         uuid.New(),
		Status:     models.StatusPending,
		GithubRepo: "widgets",
		File:       "projects/p2",
	}
	entries, source := src.Resolve(context.Background(), project)

	require.False(t, diff.called)
	require.Equal(t, SourceLocal, source)
	require.Len(t, entries, 1)
}

func TestResolveMissingLocalStateYieldsEmpty(t *testing.T) {
	diff := &stubDiff{}
	src, _, _ := newTestFileSource(t, diff)

	// No stored folder at all.
	project := &models.Project{ID: uuid.New(), Status: models.StatusPending}
	entries, source := src.Resolve(context.Background(), project)
	require.Equal(t, SourceLocal, source)
	require.Nil(t, entries)

	// Folder recorded but gone from disk.
	project.File = "projects/vanished"
	entries, source = src.Resolve(context.Background(), project)
	require.Equal(t, SourceLocal, source)
	require.Nil(t, entries)
}

func TestResolveReadsSingleStoredFile(t *testing.T) {
	diff := &stubDiff{}
	src, _, root := newTestFileSource(t, diff)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "projects", "solo.txt"), []byte("one"), 0o644))

	project := &models.Project{ID: uuid.New(), Status: models.StatusPending, File: "projects/solo.txt"}
	entries, source := src.Resolve(context.Background(), project)

	require.Equal(t, SourceLocal, source)
	require.Len(t, entries, 1)
	require.Equal(t, "solo.txt", entries[0].Name)
	require.NotNil(t, entries[0].Content)
	require.Equal(t, "one", *entries[0].Content)
}
