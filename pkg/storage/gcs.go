package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GcsStorage stores objects in a Google Cloud Storage bucket using application default credentials.
type GcsStorage struct {
	bucket  string
	service *gcs.Service
}

func NewGcsStorage(ctx context.Context, bucket string) (*GcsStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs storage requires a bucket name")
	}
	tokenSource, err := google.DefaultTokenSource(ctx, gcs.DevstorageReadWriteScope)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain google credentials: %w", err)
	}
	service, err := gcs.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create storage service: %w", err)
	}
	return &GcsStorage{bucket: bucket, service: service}, nil
}

func (s *GcsStorage) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	object := &gcs.Object{
		Name:        key,
		ContentType: contentType,
	}
	stored, err := s.service.Objects.Insert(s.bucket, object).
		Media(data, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		log.Errorf("failed to upload %s to bucket %s: %v", key, s.bucket, err)
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", gcsPublicHost, s.bucket, (&url.URL{Path: stored.Name}).EscapedPath()), nil
}

func (s *GcsStorage) Delete(ctx context.Context, key string) error {
	err := s.service.Objects.Delete(s.bucket, key).Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *GcsStorage) KeyOf(rawUrl string) (string, bool) {
	escaped, found := strings.CutPrefix(rawUrl, fmt.Sprintf("%s/%s/", gcsPublicHost, s.bucket))
	if !found || escaped == "" {
		return "", false
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return key, true
}
