package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

// PhotoStore writes resource photos to a public-read GCS bucket.
type PhotoStore struct {
	client *storage.Client
	bucket string
}

func NewPhotoStore(client *storage.Client, bucket string) *PhotoStore {
	return &PhotoStore{client: client, bucket: bucket}
}

func (s *PhotoStore) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, objectPath, contentType, r)
}
