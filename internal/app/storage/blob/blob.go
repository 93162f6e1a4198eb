package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Store is the audio object storage used for staging uploads
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds the storage key of an uploaded file: <userID>/<unixMilli>-<name>
func ObjectKey(userID string, at time.Time, originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "audio"
	}
	return fmt.Sprintf("%s/%d-%s", userID, at.UnixMilli(), name)
}
