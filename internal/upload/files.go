package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backloghub/engine/internal/models"
)

// textExtensions classifies files that are safe to render as text.
var textExtensions = map[string]bool{
	"txt": true, "md": true, "markdown": true, "rst": true,
	"go": true, "py": true, "rb": true, "php": true, "java": true,
	"c": true, "h": true, "cpp": true, "hpp": true, "cs": true,
	"js": true, "jsx": true, "ts": true, "tsx": true, "vue": true,
	"html": true, "htm": true, "css": true, "scss": true, "less": true,
	"json": true, "yaml": true, "yml": true, "toml": true, "xml": true,
	"ini": true, "cfg": true, "conf": true, "env": true,
	"sh": true, "bash": true, "zsh": true, "bat": true, "ps1": true,
	"sql": true, "csv": true, "tsv": true, "log": true,
	"gitignore": true, "dockerfile": true, "makefile": true,
}

// IsTextFile classifies a file as renderable text by its extension. Files
// without an extension are matched on the whole lowercased name.
func IsTextFile(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if e := ext(base); e != "" {
		return textExtensions[e]
	}
	return textExtensions[base]
}

// FormatFileSize renders a byte count for humans.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}

// ScanDirectory recursively enumerates a stored project folder. Folders sort
// before files; within each group entries sort by name.
func (s *Service) ScanDirectory(path string) ([]models.FileEntry, error) {
	return s.scanDir(path, "")
}

func (s *Service) scanDir(abs, rel string) ([]models.FileEntry, error) {
	dirents, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var entries []models.FileEntry
	for _, d := range dirents {
		childRel := d.Name()
		if rel != "" {
			childRel = rel + "/" + d.Name()
		}
		if d.IsDir() {
			children, err := s.scanDir(filepath.Join(abs, d.Name()), childRel)
			if err != nil {
				return nil, err
			}
			entries = append(entries, models.FileEntry{
				Name:     d.Name(),
				Path:     childRel,
				Type:     models.FileEntryFolder,
				Children: children,
			})
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, err
		}
		file := filepath.Join(abs, d.Name())
		entries = append(entries, s.fileEntry(d.Name(), childRel, info.Size(), func() ([]byte, error) {
			return os.ReadFile(file)
		}))
	}

	sortEntries(entries)
	return entries, nil
}

// ReadSingleFile wraps one plain stored file as a listing.
func (s *Service) ReadSingleFile(path string) ([]models.FileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return []models.FileEntry{
		s.fileEntry(name, name, info.Size(), func() ([]byte, error) { return os.ReadFile(path) }),
	}, nil
}

// sortEntries orders folders before files, each group ascending by name.
func sortEntries(entries []models.FileEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == models.FileEntryFolder
		}
		return entries[i].Name < entries[j].Name
	})
}
