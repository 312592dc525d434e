package memory

import (
	"context"
	"sync"
)

type SettingsRepository struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{items: make(map[string]string)}
}

func (r *SettingsRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[key]
	return value, ok, nil
}

func (r *SettingsRepository) Put(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[key] = value
	return nil
}
