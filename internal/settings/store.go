// Package settings keeps the versioned rate configuration (electricity,
// depreciation, material and labor rates, machines). The whole object carries
// one UpdatedAt and is merged latest-wins: there is no per-field or
// per-machine merge, so concurrent machine edits from two devices keep only
// one device's machine list.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ddreams3d/backend/internal/blob"
	"github.com/ddreams3d/backend/internal/costmodel"
	"github.com/ddreams3d/backend/internal/model"
)

// ErrMachineNotFound is returned when a machine id does not exist.
var ErrMachineNotFound = errors.New("machine not found")

// Store is the local-first settings object behind one blob slot.
type Store struct {
	mu       sync.RWMutex
	local    blob.Store
	key      string
	settings model.RateSettings

	now func() int64
}

// New creates a Store over the given local slot. Call Load before use.
func New(local blob.Store, key string) *Store {
	return &Store{
		local: local,
		key:   key,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// Key returns the slot key this store persists to.
func (s *Store) Key() string {
	return s.key
}

// Load hydrates settings from the local slot; a fresh install gets defaults.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.local.Load(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		s.mu.Lock()
		s.settings = model.DefaultRateSettings()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	var settings model.RateSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("settings: parse slot %s: %w", s.key, err)
	}
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Get returns the current rate table. The cost model consumes this read-only;
// snapshots embed their own value copy of the rates they used.
func (s *Store) Get() model.RateSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Put replaces the whole settings object, bumps UpdatedAt and persists.
// Machine hourly rates are re-derived from each machine's lifetime inputs on
// every save, so editing purchase cost or usage assumptions can never leave
// a stale rate behind.
func (s *Store) Put(ctx context.Context, settings model.RateSettings) (model.RateSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range settings.Machines {
		m := &settings.Machines[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.HourlyRate = costmodel.MachineHourlyRate(m.PurchaseCost, m.LifeYears, m.DailyHours)
	}
	settings.UpdatedAt = s.bump(s.settings.UpdatedAt)

	prev := s.settings
	s.settings = settings
	if err := s.persistLocked(ctx); err != nil {
		s.settings = prev
		return model.RateSettings{}, err
	}
	return settings, nil
}

// UpsertMachine adds or updates a machine, re-deriving its hourly rate, and
// bumps the settings UpdatedAt.
func (s *Store) UpsertMachine(ctx context.Context, m model.MachineDefinition) (*model.MachineDefinition, error) {
	if m.Name == "" {
		return nil, errors.New("settings: machine name is required")
	}
	if !m.Type.IsValid() {
		return nil, errors.New("settings: unknown machine type")
	}
	m.HourlyRate = costmodel.MachineHourlyRate(m.PurchaseCost, m.LifeYears, m.DailyHours)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	next := s.settings
	next.Machines = make([]model.MachineDefinition, len(s.settings.Machines))
	copy(next.Machines, s.settings.Machines)

	if m.ID == "" {
		m.ID = uuid.NewString()
		next.Machines = append(next.Machines, m)
	} else {
		found := false
		for i := range next.Machines {
			if next.Machines[i].ID == m.ID {
				next.Machines[i] = m
				found = true
				break
			}
		}
		if !found {
			return nil, ErrMachineNotFound
		}
	}
	next.UpdatedAt = s.bump(prev.UpdatedAt)

	s.settings = next
	if err := s.persistLocked(ctx); err != nil {
		s.settings = prev
		return nil, err
	}
	return &m, nil
}

// RemoveMachine deletes a machine from the rate table.
func (s *Store) RemoveMachine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	next := s.settings
	next.Machines = make([]model.MachineDefinition, 0, len(s.settings.Machines))
	found := false
	for _, m := range s.settings.Machines {
		if m.ID == id {
			found = true
			continue
		}
		next.Machines = append(next.Machines, m)
	}
	if !found {
		return ErrMachineNotFound
	}
	next.UpdatedAt = s.bump(prev.UpdatedAt)

	s.settings = next
	if err := s.persistLocked(ctx); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

// Replace swaps settings for a merged result without bumping UpdatedAt
// (the reconciler's publish path).
func (s *Store) Replace(ctx context.Context, settings model.RateSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.settings
	s.settings = settings
	if err := s.persistLocked(ctx); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

func (s *Store) bump(prev int64) int64 {
	now := s.now()
	if now <= prev {
		return prev + 1
	}
	return now
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("settings: marshal slot %s: %w", s.key, err)
	}
	return s.local.Save(ctx, s.key, data)
}

// Merge picks whichever whole settings object has the greater UpdatedAt;
// ties keep the remote copy. Nothing is combined per field.
func Merge(local, remote model.RateSettings) model.RateSettings {
	if local.UpdatedAt > remote.UpdatedAt {
		return local
	}
	return remote
}
