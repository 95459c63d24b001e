package models

// FileEntry is a synthesized view of one deliverable file or folder. It is
// computed at read time and never persisted.
//
// Content is populated only when IsReadable is true and the file is below the
// configured size cap; binary or oversized files carry a Message instead.
type FileEntry struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Type       string  `json:"type"` // "file" or "folder"
	Size       string  `json:"size,omitempty"`
	Content    *string `json:"content"`
	IsReadable bool    `json:"is_readable"`
	Message    string  `json:"message,omitempty"`

	// Populated when the entry derives from a branch comparison.
	SHA          string `json:"sha,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
	ChangeStatus string `json:"change_status,omitempty"`

	Children []FileEntry `json:"children,omitempty"`
}

const (
	FileEntryFile   = "file"
	FileEntryFolder = "folder"
)
