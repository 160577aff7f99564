// Package uuid wraps UUID generation so the dependency stays in one place.
package uuid

import "github.com/google/uuid"

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}
