package services

import (
	"context"
	"path"
	"sort"

	"github.com/backloghub/engine/internal/github"
	"github.com/backloghub/engine/internal/models"
	"github.com/backloghub/engine/internal/upload"
	"github.com/backloghub/engine/pkg/logger"
	"go.uber.org/zap"
)

// UserFileResolver produces the files a user actually contributed on their
// branch, as opposed to content inherited from the base branch.
type UserFileResolver interface {
	ResolveUserFiles(ctx context.Context, repo, base, userBranch string) []models.FileEntry
}

// DiffResolver resolves user contributions by comparing the user branch
// against the base branch. maxBytes caps how much remote content is inlined.
type DiffResolver struct {
	gh       github.Client
	maxBytes int64
}

func NewDiffResolver(gh github.Client, maxBytes int64) *DiffResolver {
	return &DiffResolver{gh: gh, maxBytes: maxBytes}
}

var _ UserFileResolver = (*DiffResolver)(nil)

// ResolveUserFiles returns the added/modified files on userBranch relative to
// base, sorted by name. Deletions are excluded: a user cannot submit a
// deletion as content. Any failure yields an empty list; the caller falls
// back to local storage.
func (r *DiffResolver) ResolveUserFiles(ctx context.Context, repo, base, userBranch string) []models.FileEntry {
	if userBranch == "" {
		return nil
	}

	changes, err := r.gh.CompareBranches(ctx, repo, base, userBranch)
	if err != nil {
		logger.L().Warn("branch comparison failed",
			zap.String("repo", repo),
			zap.String("base", base),
			zap.String("head", userBranch),
			zap.Error(err),
		)
		return nil
	}

	var out []models.FileEntry
	for _, ch := range changes {
		if ch.Status != github.ChangeAdded && ch.Status != github.ChangeModified {
			continue
		}

		data, err := r.gh.GetFileContent(ctx, repo, ch.Filename, userBranch)
		if err != nil {
			logger.L().Warn("fetching blob content failed",
				zap.String("repo", repo),
				zap.String("path", ch.Filename),
				zap.Error(err),
			)
			continue
		}

		name := path.Base(ch.Filename)
		entry := models.FileEntry{
			Name:         name,
			Path:         ch.Filename,
			Type:         models.FileEntryFile,
			Size:         upload.FormatFileSize(int64(len(data))),
			IsReadable:   upload.IsTextFile(name),
			SHA:          ch.SHA,
			DownloadURL:  ch.BlobURL,
			ChangeStatus: ch.Status,
		}
		switch {
		case !entry.IsReadable:
			entry.Message = "Binary file - cannot display content"
		case int64(len(data)) > r.maxBytes:
			entry.Message = "File too large to display"
		default:
			content := string(data)
			entry.Content = &content
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
