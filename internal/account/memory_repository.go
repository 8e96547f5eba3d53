package account

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Account
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[acc.Number]; exists {
		return ErrDuplicate
	}
	r.storage[acc.Number] = acc
	return nil
}

func (r *memoryRepository) Get(_ context.Context, number string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.storage[number]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *memoryRepository) Save(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[acc.Number]; !ok {
		return ErrNotFound
	}
	r.storage[acc.Number] = acc
	return nil
}

func (r *memoryRepository) Exists(_ context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.storage[number]
	return ok, nil
}
