package testutil

import (
	"context"
	"io"
	"sync"
)

// MemoryBlobStore is an in-memory blob.Store. It records uploads and
// deletes so tests can assert on the replacement protocol, and can be
// primed to fail either operation.
type MemoryBlobStore struct {
	mu        sync.Mutex
	BaseURL   string
	Objects   map[string][]byte
	Deleted   []string
	UploadErr error
	DeleteErr error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		BaseURL: "http://blobs.test/media",
		Objects: make(map[string][]byte),
	}
}

func (m *MemoryBlobStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UploadErr != nil {
		return "", m.UploadErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.Objects[key] = data
	return m.BaseURL + "/" + key, nil
}

func (m *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	delete(m.Objects, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// DeletedKeys returns a copy of the keys deleted so far.
func (m *MemoryBlobStore) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, len(m.Deleted))
	copy(keys, m.Deleted)
	return keys
}
