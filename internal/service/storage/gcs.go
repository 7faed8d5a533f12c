package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCSStore implements ObjectStore on a Google Cloud Storage bucket.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore wraps an already-constructed GCS client. The client is a
// process-wide singleton owned by main.
func NewGCSStore(client *gcs.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Put writes one object with an explicit content type.
func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

// SignUpload issues a V4 signed PUT URL so the client can upload recorded
// audio directly to the bucket without routing it through the backend.
func (s *GCSStore) SignUpload(filename, contentType string, expiry time.Duration) (SignedUpload, error) {
	object := fmt.Sprintf("uploads/%s_%s", Timestamp(), path.Base(filename))

	url, err := s.client.Bucket(s.bucket).SignedURL(object, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     time.Now().Add(expiry),
		ContentType: contentType,
	})
	if err != nil {
		return SignedUpload{}, fmt.Errorf("sign upload for %s: %w", object, err)
	}

	return SignedUpload{
		UploadURL:  url,
		ObjectName: object,
		URI:        fmt.Sprintf("gs://%s/%s", s.bucket, object),
	}, nil
}
