package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/model"
)

// CategoryStore keeps the mutable category lists the record editors draw
// from. Local-only: categories are not part of the sync scope, and the
// reserved entries are re-added on every write so they can never be removed.
type CategoryStore struct {
	mu         sync.RWMutex
	local      blob.Store
	key        string
	categories model.CategoriesConfig
}

// NewCategoryStore creates a CategoryStore over the given local slot.
func NewCategoryStore(local blob.Store, key string) *CategoryStore {
	return &CategoryStore{local: local, key: key}
}

// Load hydrates the lists; a fresh install gets the stock categories.
func (s *CategoryStore) Load(ctx context.Context) error {
	data, err := s.local.Load(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		s.mu.Lock()
		s.categories = model.DefaultCategories()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	var cfg model.CategoriesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("settings: parse slot %s: %w", s.key, err)
	}
	s.mu.Lock()
	s.categories = cfg.EnsureReserved()
	s.mu.Unlock()
	return nil
}

// Get returns the current category config.
func (s *CategoryStore) Get() model.CategoriesConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

// Put replaces the category config and persists, restoring reserved entries.
func (s *CategoryStore) Put(ctx context.Context, cfg model.CategoriesConfig) (model.CategoriesConfig, error) {
	cfg = cfg.EnsureReserved()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.categories
	s.categories = cfg
	data, err := json.Marshal(cfg)
	if err != nil {
		s.categories = prev
		return model.CategoriesConfig{}, fmt.Errorf("settings: marshal slot %s: %w", s.key, err)
	}
	if err := s.local.Save(ctx, s.key, data); err != nil {
		s.categories = prev
		return model.CategoriesConfig{}, err
	}
	return cfg, nil
}
