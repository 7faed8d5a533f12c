// Package storage persists conversation artifacts (transcripts, feedback,
// uploaded audio) to an object store, keyed so that every artifact of one
// session shares a correlation timestamp.
package storage

import (
	"context"
	"time"
)

// TimestampLayout is the correlation key format shared by every artifact a
// session produces (logs/<ts>.txt, feedback/<ts>.md, uploads/<ts>_<name>).
const TimestampLayout = "20060102-150405"

// Timestamp returns the correlation key for artifacts created now.
func Timestamp() string {
	return time.Now().Format(TimestampLayout)
}

// ObjectStore is the write-only blob collaborator. Content type is always
// explicit; readers reconcile artifacts out-of-band by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// SignedUpload is the result of pre-authorizing a direct client upload.
type SignedUpload struct {
	UploadURL  string `json:"uploadUrl"`
	ObjectName string `json:"objectName"`
	URI        string `json:"uri"`
}
