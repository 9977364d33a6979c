package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
}

// Memory keeps objects in process memory. Used for local development
// and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject

	// FailDeletes makes every Delete fail, for exercising compensation paths
	FailDeletes bool
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return fmt.Errorf("failed to read object body, %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("object %s: expected %d bytes, got %d", key, size, len(data))
	}

	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()

	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDeletes {
		return errors.New("memory store: deletes disabled")
	}

	delete(m.objects, key)
	return nil
}

func (m *Memory) PresignGet(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	q := url.Values{}
	q.Set("response-content-type", contentType)
	q.Set("response-content-disposition", "inline")
	q.Set("expires", time.Now().Add(expiry).UTC().Format(time.RFC3339))

	return m.URL(key) + "?" + q.Encode(), nil
}

func (m *Memory) URL(key string) string {
	return "memory://objects/" + key
}

// Has reports whether key is stored
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}
