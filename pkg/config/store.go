package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var ErrNoEntry = errors.New("no configuration entry has been set up")

// UpdateListener is called after the entry options changed and were persisted
type UpdateListener func(ctx context.Context, entry Entry) error

// EntryStore persists the configuration entry as a YAML file
type EntryStore struct {
	path string

	mu    sync.RWMutex
	entry *Entry

	listenersMu sync.Mutex
	listeners   map[int]UpdateListener
	listenerID  int
}

// OpenEntryStore loads the entry at path if the file exists
func OpenEntryStore(path string) (*EntryStore, error) {
	store := &EntryStore{
		path:      path,
		listeners: map[int]UpdateListener{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse entry file %s: %w", path, err)
	}
	store.entry = &entry

	return store, nil
}

func (s *EntryStore) Path() string {
	return s.path
}

func (s *EntryStore) Entry() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.entry == nil {
		return Entry{}, false
	}

	return *s.entry, true
}

// Create persists a new entry, replacing any existing one
func (s *EntryStore) Create(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(entry); err != nil {
		return err
	}
	s.entry = &entry

	log.Info().Str("title", entry.Title).Int("stops", len(entry.Data.StopIDs)).Msg("Created configuration entry")

	return nil
}

// UpdateOptions persists new options and then notifies every update listener
func (s *EntryStore) UpdateOptions(ctx context.Context, options EntryOptions) error {
	s.mu.Lock()
	if s.entry == nil {
		s.mu.Unlock()
		return ErrNoEntry
	}

	entry := *s.entry
	entry.Options = options
	if err := s.write(entry); err != nil {
		s.mu.Unlock()
		return err
	}
	s.entry = &entry
	s.mu.Unlock()

	log.Info().Strs("stopids", options.StopIDs).Msg("Updated configuration entry options")

	s.listenersMu.Lock()
	listeners := make([]UpdateListener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.listenersMu.Unlock()

	var errs []error
	for _, listener := range listeners {
		if err := listener(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// AddUpdateListener registers listener and returns a function removing it again
func (s *EntryStore) AddUpdateListener(listener UpdateListener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.listenerID
	s.listenerID++
	s.listeners[id] = listener

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()

		delete(s.listeners, id)
	}
}

func (s *EntryStore) write(entry Entry) error {
	data, err := yaml.Marshal(entry)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.path)
}
