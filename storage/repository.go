// Package storage provides the storage abstraction layer for durable auth records.
package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Record kinds. Kinds namespace record IDs within a repository.
const (
	KindSession = "SESSION"
)

// Repository defines the interface for durable record storage. Values are
// opaque encoded rows; all domain logic lives above this layer.
type Repository interface {
	Put(kind string, id string, data []byte) error
	// Get returns the stored record or ErrNotFound.
	Get(kind string, id string) ([]byte, error)
	// Delete removes a record and reports whether a record was actually
	// removed. Concurrent deletes of the same id observe exactly one true.
	Delete(kind string, id string) (bool, error)
	List(kind string) ([]string, error)
}
