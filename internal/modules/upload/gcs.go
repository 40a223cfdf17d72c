package upload

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes objects to a Google Cloud Storage bucket with a public-read ACL.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore connects to bucket using a service-account JSON blob, or the
// ambient application default credentials when credentialsJSON is empty.
func NewGCSStore(ctx context.Context, bucket, credentialsJSON string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	return newGCSStore(ctx, bucket, opts...)
}

func newGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put streams obj into the bucket. A failed copy cancels the writer so the
// partial object is never committed.
func (s *GCSStore) Put(ctx context.Context, obj Object) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(obj.Name).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.CacheControl = obj.CacheControl
	w.Metadata = obj.Metadata
	w.PredefinedACL = "publicRead"

	if _, err := io.Copy(w, obj.Body); err != nil {
		cancel()
		w.Close()
		return "", fmt.Errorf("write %s: %w", obj.Name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", obj.Name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, obj.Name), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
