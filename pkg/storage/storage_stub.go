package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

const stubBaseUrl = "https://media.test/"

// StubStorage keeps objects in memory.
type StubStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Fail    bool
}

func NewStubStorage() *StubStorage {
	return &StubStorage{Objects: map[string][]byte{}}
}

func (s *StubStorage) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if s.Fail {
		return "", errors.New("storage unavailable")
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = content
	return stubBaseUrl + key, nil
}

func (s *StubStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *StubStorage) KeyOf(url string) (string, bool) {
	key, found := strings.CutPrefix(url, stubBaseUrl)
	return key, found && key != ""
}
