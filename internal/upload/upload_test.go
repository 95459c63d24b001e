package upload

import (
	"archive/zip"
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/backloghub/engine/internal/models"
	appErr "github.com/backloghub/engine/pkg/errors"
)

func TestIsTextFile(t *testing.T) {
	cases := map[string]bool{
		"main.go":       true,
		"README.md":     true,
		"notes.TXT":     true,
		"config.yaml":   true,
		"Makefile":      true,
		".gitignore":    true,
		"logo.png":      false,
		"app.exe":       false,
		"archive.zip":   false,
		"noextension":   false,
		"photo.JPG":     false,
		"src/index.tsx": true,
	}
	for name, want := range cases {
		require.Equal(t, want, IsTextFile(name), "name %q", name)
	}
}

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatFileSize(tc.size))
	}
}

func multipartFiles(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func TestStoreSingleFile(t *testing.T) {
	svc := NewService(t.TempDir(), 100, 1<<20)
	owner := uuid.New()

	stored, err := svc.Store(owner, multipartFiles(t, map[string]string{"report.txt": "hello"}))
	require.NoError(t, err)
	require.Equal(t, TypeSingle, stored.UploadType)
	require.Equal(t, 1, stored.TotalFiles)
	require.Len(t, stored.LocalFiles, 1)
	require.True(t, strings.HasPrefix(stored.Folder, "projects/project_"+owner.String()))

	data, err := os.ReadFile(svc.Abs(stored.LocalFiles[0]))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestStoreClassifiesArchives(t *testing.T) {
	svc := NewService(t.TempDir(), 100, 1<<20)

	stored, err := svc.Store(uuid.New(), multipartFiles(t, map[string]string{"bundle.zip": "PK"}))
	require.NoError(t, err)
	require.Equal(t, TypeArchive, stored.UploadType)

	stored, err = svc.Store(uuid.New(), multipartFiles(t, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
	}))
	require.NoError(t, err)
	require.Equal(t, TypeMultiple, stored.UploadType)
}

func TestStoreRejectsOversizeBeforeWriting(t *testing.T) {
	root := t.TempDir()
	// 1 MB cap.
	svc := NewService(root, 1, 1<<20)

	files := multipartFiles(t, map[string]string{
		"ok.txt":  "fine",
		"big.bin": strings.Repeat("x", 2<<20),
	})
	_, err := svc.Store(uuid.New(), files)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	// Nothing was written.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestScanDirectoryOrdersFoldersFirst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "zz.txt"), []byte("z"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "aa.txt"), []byte("a"), 0o644))

	svc := NewService(root, 100, 1<<20)
	entries, err := svc.ScanDirectory(root)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	require.Equal(t, "src", entries[0].Name)
	require.Equal(t, models.FileEntryFolder, entries[0].Type)
	require.Equal(t, "aa.txt", entries[1].Name)
	require.Equal(t, "zz.txt", entries[2].Name)

	require.Len(t, entries[0].Children, 1)
	child := entries[0].Children[0]
	require.Equal(t, "main.go", child.Name)
	require.Equal(t, "src/main.go", child.Path)
	require.NotNil(t, child.Content)
	require.Equal(t, "package main", *child.Content)
}

func TestScanDirectoryContentPolicy(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "logo.png"), []byte{0x89, 0x50}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), bytes.Repeat([]byte("x"), 64), 0o644))

	svc := NewService(root, 100, 32)
	entries, err := svc.ScanDirectory(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	big, logo := entries[0], entries[1]
	require.Equal(t, "big.txt", big.Name)
	require.Nil(t, big.Content)
	require.Equal(t, "File too large to display", big.Message)

	require.False(t, logo.IsReadable)
	require.Nil(t, logo.Content)
	require.Equal(t, "Binary file - cannot display content", logo.Message)
}

func TestReadSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes"), 0o644))

	svc := NewService(root, 100, 1<<20)
	entries, err := svc.ReadSingleFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "notes.md", entries[0].Name)
	require.True(t, entries[0].IsReadable)
	require.Equal(t, "# notes", *entries[0].Content)
}

func TestExtractAndReadZip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bundle.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"main.go":   "package main",
		"data.bin":  "\x00\x01",
		"docs/a.md": "# a",
	} {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	svc := NewService(root, 100, 1<<20)
	entries, err := svc.ExtractAndReadArchive(path, "zip")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]models.FileEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	require.NotNil(t, byName["main.go"].Content)
	require.Equal(t, "package main", *byName["main.go"].Content)
	require.Nil(t, byName["data.bin"].Content)
	require.Equal(t, "docs/a.md", byName["a.md"].Path)
}

func TestExtractAndReadArchiveUnknownExtension(t *testing.T) {
	svc := NewService(t.TempDir(), 100, 1<<20)
	_, err := svc.ExtractAndReadArchive("whatever.tar", "tar")
	require.Error(t, err)
}
