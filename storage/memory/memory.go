// Package memory provides a thread-safe in-memory implementation of storage.Repository.
package memory

import (
	"fmt"
	"sync"

	"github.com/wordtrove/authd/internal/util"
	"github.com/wordtrove/authd/storage"
)

// Repository is a thread-safe in-memory implementation of storage.Repository.
// Suitable for testing, demos, and single-process use cases.
type Repository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string][]byte)}
}

func makeKey(kind, id string) string {
	return kind + ":" + id
}

func (r *Repository) Put(kind, id string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[makeKey(kind, id)] = util.CopyBytes(data)
	return nil
}

func (r *Repository) Get(kind, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[makeKey(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	return util.CopyBytes(data), nil
}

func (r *Repository) Delete(kind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := makeKey(kind, id)
	if _, ok := r.data[key]; !ok {
		return false, nil
	}
	delete(r.data, key)
	return true, nil
}

func (r *Repository) List(kind string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := kind + ":"
	var ids []string
	for key := range r.data {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			ids = append(ids, key[len(prefix):])
		}
	}
	return ids, nil
}
