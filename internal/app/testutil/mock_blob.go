package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"
)

// ErrInjected is returned by mocks configured to fail
var ErrInjected = errors.New("injected failure")

// MemoryBlobStore is an in-memory blob store. FailPutAfter makes the
// Put call with that index (counting from 0) fail.
type MemoryBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	puts    int

	FailPutAfter int
	FailDelete   bool
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte), FailPutAfter: -1}
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPutAfter >= 0 && s.puts >= s.FailPutAfter {
		s.puts++
		return ErrInjected
	}
	s.puts++
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *MemoryBlobStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blob.test/" + key + "?ttl=" + ttl.String(), nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete {
		return ErrInjected
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// Keys returns the stored keys in sorted order
func (s *MemoryBlobStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Deleted returns every key passed to Delete
func (s *MemoryBlobStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Object returns the stored content of key
func (s *MemoryBlobStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
