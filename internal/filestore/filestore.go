// Package filestore stores uploaded documents in object storage. Callers only
// ever see opaque object keys and time-limited signed URLs.
package filestore

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Folders used by the document workflows.
const (
	FolderKYC           = "kyc-documents"
	FolderClaimEvidence = "claim-evidence"
)

// Upload is one file received from a caller.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Storage is the object storage contract.
type Storage interface {
	Upload(ctx context.Context, file Upload, folder string) (key string, err error)
	Sign(ctx context.Context, key string, ttl time.Duration) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds "<basePath>/<folder>/<uuid><ext>", keeping the original
// file extension so downloads open with the right application.
func ObjectKey(basePath, folder, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return strings.TrimPrefix(path.Join(basePath, folder, uuid.NewString()+ext), "/")
}

// CleanupTimeout bounds best-effort deletes issued after a failed workflow.
const CleanupTimeout = 10 * time.Second
