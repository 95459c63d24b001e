// Package upload stores project submissions on local disk and resolves them
// back into displayable file listings.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/backloghub/engine/internal/models"
	appErr "github.com/backloghub/engine/pkg/errors"
	"github.com/google/uuid"
)

// Upload type classifications reported back to the client.
const (
	TypeNone     = "none"
	TypeSingle   = "single"
	TypeArchive  = "archive"
	TypeMultiple = "multiple"
)

// StoredUpload describes where an upload landed on disk.
type StoredUpload struct {
	// Folder is the project's storage folder, relative to the upload root.
	Folder     string
	LocalFiles []string
	UploadType string
	TotalFiles int
}

// Service owns the upload root directory and the content policy limits.
type Service struct {
	root         string
	maxFileBytes int64
	// contentCap bounds how much file content is inlined into a FileEntry.
	contentCap int64
}

func NewService(root string, maxUploadMB, contentCap int64) *Service {
	return &Service{root: root, maxFileBytes: maxUploadMB << 20, contentCap: contentCap}
}

// MaxFileBytes returns the per-file upload cap in bytes.
func (s *Service) MaxFileBytes() int64 { return s.maxFileBytes }

// Abs resolves a stored path relative to the upload root.
func (s *Service) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

// Store saves the uploaded files into a fresh per-project folder. Each file is
// size-checked before anything is written, so a rejected upload leaves no
// partial state behind.
func (s *Service) Store(ownerID uuid.UUID, files []*multipart.FileHeader) (*StoredUpload, error) {
	if len(files) == 0 {
		return &StoredUpload{UploadType: TypeNone}, nil
	}
	for _, fh := range files {
		if fh.Size > s.maxFileBytes {
			return nil, appErr.New(appErr.CodeInvalid,
				fmt.Sprintf("file %q exceeds the %d MB limit", fh.Filename, s.maxFileBytes>>20))
		}
	}

	folder := filepath.ToSlash(filepath.Join("projects", fmt.Sprintf("project_%s_%s", ownerID, uuid.NewString()[:8])))
	absFolder := s.Abs(folder)
	if err := os.MkdirAll(absFolder, 0o755); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create upload folder failed")
	}

	out := &StoredUpload{Folder: folder, TotalFiles: len(files)}
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if err := saveFile(fh, filepath.Join(absFolder, name)); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "store uploaded file failed")
		}
		out.LocalFiles = append(out.LocalFiles, folder+"/"+name)
	}

	switch {
	case len(files) == 1 && isArchiveExt(ext(files[0].Filename)):
		out.UploadType = TypeArchive
	case len(files) == 1:
		out.UploadType = TypeSingle
	default:
		out.UploadType = TypeMultiple
	}
	return out, nil
}

func saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, src)
	return err
}

func ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func isArchiveExt(e string) bool {
	return e == "zip" || e == "rar" || e == "7z"
}

// fileEntry builds a file entry, inlining content when the file is readable
// text and within the content cap.
func (s *Service) fileEntry(name, path string, size int64, read func() ([]byte, error)) models.FileEntry {
	entry := models.FileEntry{
		Name:       name,
		Path:       path,
		Type:       models.FileEntryFile,
		Size:       FormatFileSize(size),
		IsReadable: IsTextFile(name),
	}
	if !entry.IsReadable {
		entry.Message = "Binary file - cannot display content"
		return entry
	}
	if size > s.contentCap {
		entry.Message = "File too large to display"
		return entry
	}
	data, err := read()
	if err != nil {
		entry.Message = "Could not read file content"
		return entry
	}
	content := string(data)
	entry.Content = &content
	return entry
}
