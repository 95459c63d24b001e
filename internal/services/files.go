package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/upload"
	"github.com/backloghub/engine/pkg/logger"
	"go.uber.org/zap"
)

// File listing sources reported to the client.
const (
	SourceGitHub = "github"
	SourceLocal  = "local"
)

// FileResolver is the single entry point for a project's displayable files.
type FileResolver interface {
	Resolve(ctx context.Context, project *models.Project) ([]models.FileEntry, string)
}

// FileSource chooses between the GitHub branch diff and local storage.
// Resolution never fails the surrounding request: any GitHub trouble falls
// back to local storage, and local trouble yields an empty listing.
type FileSource struct {
	diff    UserFileResolver
	uploads *upload.Service
	base    string
}

func NewFileSource(diff UserFileResolver, uploads *upload.Service, baseBranch string) *FileSource {
	return &FileSource{diff: diff, uploads: uploads, base: baseBranch}
}

var _ FileResolver = (*FileSource)(nil)

// Resolve returns the project's file listing and where it came from. GitHub
// is consulted only for approved projects with a linked repository; an empty
// diff means "nothing meaningfully retrievable from GitHub" and falls back to
// local storage.
func (f *FileSource) Resolve(ctx context.Context, project *models.Project) ([]models.FileEntry, string) {
	if project.Status == models.StatusApproved && project.GithubRepo != "" {
		if entries := f.diff.ResolveUserFiles(ctx, project.GithubRepo, f.base, project.GithubBranch); len(entries) > 0 {
			return entries, SourceGitHub
		}
		logger.L().Info("no user-submitted files on github, using local storage",
			zap.String("project_id", project.ID.String()),
		)
	}
	return f.local(project), SourceLocal
}

func (f *FileSource) local(project *models.Project) []models.FileEntry {
	if project.File == "" {
		return nil
	}
	abs := f.uploads.Abs(project.File)
	info, err := os.Stat(abs)
	if err != nil {
		logger.L().Warn("stored upload path missing",
			zap.String("project_id", project.ID.String()),
			zap.String("path", project.File),
		)
		return nil
	}

	var entries []models.FileEntry
	switch extension := strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), "."); {
	case info.IsDir():
		entries, err = f.uploads.ScanDirectory(abs)
	case extension == "zip" || extension == "rar" || extension == "7z":
		entries, err = f.uploads.ExtractAndReadArchive(abs, extension)
	default:
		entries, err = f.uploads.ReadSingleFile(abs)
	}
	if err != nil {
		logger.L().Warn("reading stored upload failed",
			zap.String("project_id", project.ID.String()),
			zap.String("path", project.File),
			zap.Error(err),
		)
		return nil
	}
	return entries
}
