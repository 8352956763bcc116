package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

var ErrInvalidObjectKey = errors.New("object key does not belong to this completion")

const completionPrefix = "completions/"

// CompletionMediaKey returns a fresh object key under the completion's prefix.
func CompletionMediaKey(completionID string) string {
	return fmt.Sprintf("%s%s/%s", completionPrefix, completionID, uuid.NewString())
}

// CheckCompletionMediaKey verifies that key was issued for completionID, so a
// client cannot attach another completion's object.
func CheckCompletionMediaKey(completionID, key string) error {
	prefix := completionPrefix + completionID + "/"
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) || strings.Contains(key[len(prefix):], "/") {
		return ErrInvalidObjectKey
	}
	return nil
}
