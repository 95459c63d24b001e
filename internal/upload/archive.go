package upload

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"

	"github.com/backloghub/engine/internal/models"
	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// ExtractAndReadArchive lists an archive's files entirely in memory; nothing
// is extracted to disk.
func (s *Service) ExtractAndReadArchive(path, extension string) ([]models.FileEntry, error) {
	var entries []models.FileEntry
	var err error

	switch extension {
	case "zip":
		entries, err = s.readZip(path)
	case "rar":
		entries, err = s.readRar(path)
	case "7z":
		entries, err = s.readSevenZip(path)
	default:
		return nil, fmt.Errorf("unsupported archive type %q", extension)
	}
	if err != nil {
		return nil, err
	}

	sortEntries(entries)
	return entries, nil
}

func (s *Service) readZip(path string) ([]models.FileEntry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var entries []models.FileEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, s.fileEntry(filepath.Base(f.Name), f.Name, int64(f.UncompressedSize64), func() ([]byte, error) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(io.LimitReader(rc, s.contentCap))
		}))
	}
	return entries, nil
}

func (s *Service) readRar(path string) ([]models.FileEntry, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open rar: %w", err)
	}
	defer rc.Close()

	var entries []models.FileEntry
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rar: %w", err)
		}
		if hdr.IsDir {
			continue
		}
		// rar entries must be consumed in stream order, so read eagerly and
		// hand fileEntry the buffered bytes.
		data, err := io.ReadAll(io.LimitReader(rc, s.contentCap))
		if err != nil {
			return nil, fmt.Errorf("read rar entry %s: %w", hdr.Name, err)
		}
		entries = append(entries, s.fileEntry(filepath.Base(hdr.Name), hdr.Name, hdr.UnPackedSize, func() ([]byte, error) {
			return data, nil
		}))
	}
	return entries, nil
}

func (s *Service) readSevenZip(path string) ([]models.FileEntry, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z: %w", err)
	}
	defer r.Close()

	var entries []models.FileEntry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, s.fileEntry(filepath.Base(f.Name), f.Name, f.FileInfo().Size(), func() ([]byte, error) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(io.LimitReader(rc, s.contentCap))
		}))
	}
	return entries, nil
}
