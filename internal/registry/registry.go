// Package registry holds the invokable actions known to the host: built-in
// host actions and the user's custom commands.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/notecmd/internal/apperr"
)

// Handler runs an action.
type Handler func(ctx context.Context) error

// Action is a named, invokable operation.
type Action struct {
	ID      string
	Name    string
	Handler Handler
}

// Registry is an ordered set of actions keyed by id.
//
// Iteration order is registration order. The lock is never held while a
// handler runs, so handlers may invoke other actions.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	actions map[string]Action
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Add registers a. It fails if the id is empty or already taken.
func (r *Registry) Add(a Action) error {
	if a.ID == "" || a.Handler == nil {
		return fmt.Errorf("registry: add %q: %w", a.Name, apperr.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[a.ID]; ok {
		return fmt.Errorf("registry: add %s: %w", a.ID, apperr.ErrAlreadyExists)
	}
	r.actions[a.ID] = a
	r.order = append(r.order, a.ID)
	return nil
}

// Remove unregisters id and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[id]; !ok {
		return false
	}
	delete(r.actions, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the action registered under id.
func (r *Registry) Get(id string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[id]
	return a, ok
}

// List returns a snapshot of all actions in registration order.
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.actions[id])
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Invoke runs the action registered under id.
func (r *Registry) Invoke(ctx context.Context, id string) error {
	a, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("registry: invoke %s: %w", id, apperr.ErrNotFound)
	}
	return a.Handler(ctx)
}
