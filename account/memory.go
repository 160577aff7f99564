package account

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/wordtrove/authd/internal/util"
)

// MemoryDirectory is a thread-safe in-memory Directory. It stands in for
// the account subsystem in tests and single-node development deployments.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

var _ Directory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// NewMemoryDirectoryFromFile loads a JSON array of User records from path.
// Password hashes in the file must already be PHC-encoded.
func NewMemoryDirectoryFromFile(path string) (*MemoryDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading accounts file: %w", err)
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parsing accounts file: %w", err)
	}
	d := NewMemoryDirectory()
	for _, u := range users {
		d.Add(u)
	}
	return d, nil
}

// Add inserts or replaces a user record.
func (d *MemoryDirectory) Add(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[u.ID] = u
	d.byEmail[util.NormalizeEmail(u.Email)] = u.ID
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byEmail[email]
	if !ok {
		return User{}, fmt.Errorf("%s: %w", email, ErrUserNotFound)
	}
	return d.byID[id], nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return User{}, fmt.Errorf("%s: %w", id, ErrUserNotFound)
	}
	return u, nil
}
