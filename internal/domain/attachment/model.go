package attachment

import (
	"encoding/json"
	"time"
)

// FileType classifies an attachment.
type FileType string

const (
	FileTypePhoto    FileType = "photo"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
)

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	switch t {
	case FileTypePhoto, FileTypeDocument, FileTypeVideo:
		return true
	}
	return false
}

// Attachment is a file stored for an activity. FilePath is the stored name
// inside the tenant's file directory, as referenced by attachment and receipt
// blocks.
type Attachment struct {
	ID            int64           `json:"id"`
	TenantID      string          `json:"tenant_id"`
	ActivityID    int64           `json:"activity_id"`
	FilePath      string          `json:"file_path"`
	OriginalName  string          `json:"original_name"`
	FileType      FileType        `json:"file_type"`
	MimeType      string          `json:"mime_type"`
	FileSize      int64           `json:"file_size"`
	ThumbnailPath *string         `json:"thumbnail_path,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// UploadRequest carries a new attachment. FileBytes is base64 on the wire.
// An empty FileType or MimeType is inferred from the content.
type UploadRequest struct {
	ActivityID int64           `json:"activity_id"`
	Filename   string          `json:"filename"`
	FileBytes  []byte          `json:"file_bytes"`
	FileType   FileType        `json:"file_type,omitempty"`
	MimeType   string          `json:"mime_type,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}
