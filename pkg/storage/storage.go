package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cofrinho/cofrinho/internal/config"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage keeps uploaded files (avatars, item images) and returns their public URL.
type Storage interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyOf maps a URL returned by Put back to its key. It reports false for URLs of other origins.
	KeyOf(url string) (string, bool)
}

// DeleteUrl removes the object behind a URL returned by Put. Foreign or empty URLs are ignored.
func DeleteUrl(ctx context.Context, s Storage, url string) error {
	key, ok := s.KeyOf(url)
	if !ok {
		return nil
	}
	return s.Delete(ctx, key)
}

// New creates the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.Storage) (Storage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.Path, cfg.PublicBaseUrl)
	case "gcs":
		return NewGcsStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
