package models

import (
	"strings"
	"time"

	id "protekt/pkg/domain"
	dErrors "protekt/pkg/domain-errors"
)

// File records an uploaded object. Key is the opaque storage key; it is never
// exposed directly, only through signed URLs.
type File struct {
	ID        id.FileID `json:"id"`
	Key       string    `json:"-"`
	MimeType  *string   `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFile(fileID id.FileID, key, mimeType string, now time.Time) (*File, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file key cannot be empty")
	}
	f := &File{ID: fileID, Key: key, CreatedAt: now, UpdatedAt: now}
	if mt := strings.TrimSpace(mimeType); mt != "" {
		f.MimeType = &mt
	}
	return f, nil
}
