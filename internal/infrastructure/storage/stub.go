package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	tradeapp "github.com/erp/fulfillment/internal/application/trade"
)

var _ tradeapp.ObjectStorage = (*StubObjectStorage)(nil)

const stubLinkTTL = 15 * time.Minute

// StubObject is what the stub keeps per key
type StubObject struct {
	ContentType string
	Data        []byte
}

// StubObjectStorage keeps objects in memory. It is used in development and
// tests where no S3-compatible backend runs.
type StubObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]StubObject
}

// NewStubObjectStorage creates an empty StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		objects: make(map[string]StubObject),
	}
}

// Put reads body fully and stores it under key
func (s *StubObjectStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if key == "" {
		return errKeyRequired
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}
	if size >= 0 && int64(buf.Len()) != size {
		return fmt.Errorf("object size mismatch: declared %d, read %d", size, buf.Len())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = StubObject{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

// Get returns the object stored under key
func (s *StubObjectStorage) Get(key string) (StubObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// DownloadURL returns a stub:// link; the stub serves no files
func (s *StubObjectStorage) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	if _, ok := s.Get(key); !ok {
		return "", time.Time{}, fmt.Errorf("object %s not found", key)
	}
	return "stub://" + key, time.Now().Add(stubLinkTTL), nil
}

// Delete removes key
func (s *StubObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
