package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/notecmd/internal/workspace"
)

// Service holds the live settings and serialises edits to them.
type Service struct {
	store *Store

	// notifyMu spans a commit and its broadcast so listeners see snapshots
	// in commit order. Listeners must not call Update or Reload.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	current   Settings
	listeners []func(Settings)
}

// NewService loads the settings from store.
func NewService(store *Store) (*Service, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Service{store: store, current: st}, nil
}

// OnChange registers f to be called with the new settings after every
// update, reload or external edit.
func (s *Service) OnChange(f func(Settings)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, f)
	s.mu.Unlock()
}

// Current returns a copy of the live settings.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Placement returns the configured placement for opened notes.
func (s *Service) Placement() workspace.Placement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Leaf.Placement()
}

// Update applies fn to a copy of the settings, saves the result and makes
// it live. Nothing changes if fn or the save fails.
func (s *Service) Update(fn func(*Settings) error) (Settings, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return Settings{}, err
	}
	if err := s.store.Save(next); err != nil {
		s.mu.Unlock()
		return Settings{}, fmt.Errorf("settings: update: %w", err)
	}
	s.current = next
	listeners := s.listeners
	s.mu.Unlock()

	s.broadcast(listeners, next)
	return next.Clone(), nil
}

// Reload re-reads the settings file.
func (s *Service) Reload() (Settings, error) {
	st, err := s.store.Load()
	if err != nil {
		return Settings{}, err
	}
	s.replace(st)
	return st.Clone(), nil
}

// Watch follows external edits to the settings file until ctx is done.
func (s *Service) Watch(ctx context.Context) error {
	return s.store.Watch(ctx, s.replace)
}

func (s *Service) replace(st Settings) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.current = st
	listeners := s.listeners
	s.mu.Unlock()
	s.broadcast(listeners, st)
}

func (s *Service) broadcast(listeners []func(Settings), st Settings) {
	for _, f := range listeners {
		f(st.Clone())
	}
}
