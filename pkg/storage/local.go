package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LocalStorage writes files below a root directory. The application serves that directory under /media/.
type LocalStorage struct {
	root          string
	publicBaseUrl string
}

func NewLocalStorage(root, publicBaseUrl string) (*LocalStorage, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		root:          absRoot,
		publicBaseUrl: strings.TrimSuffix(publicBaseUrl, "/"),
	}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	file, err := os.Create(path)
	if err != nil {
		log.Errorf("failed to create file %s: %v", path, err)
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}

	if _, err := io.Copy(file, data); err != nil {
		_ = file.Close()
		log.Errorf("failed to write file %s: %v", path, err)
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		log.Errorf("failed to flush file %s: %v", path, err)
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	log.Debugf("stored %s (%s) in local storage", key, contentType)
	return s.publicBaseUrl + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) KeyOf(url string) (string, bool) {
	key, found := strings.CutPrefix(url, s.publicBaseUrl+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func (s *LocalStorage) pathFor(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return path, nil
}
