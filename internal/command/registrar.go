package command

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/notecmd/internal/registry"
)

// DefaultLabel prefixes custom command display names.
const DefaultLabel = "Custom commands"

// Executor runs a definition. *Runner implements it.
type Executor interface {
	Run(ctx context.Context, def Definition) error
}

// Registration is the set of actions installed by one RegisterAll call.
type Registration struct {
	ids []string
}

// IDs returns the registry ids owned by the registration.
func (h *Registration) IDs() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.ids...)
}

// Registrar installs definitions as registry actions.
type Registrar struct {
	registry *registry.Registry
	exec     Executor
	label    string
	logger   *slog.Logger
}

// NewRegistrar creates a Registrar. An empty label uses DefaultLabel.
func NewRegistrar(reg *registry.Registry, exec Executor, label string, logger *slog.Logger) *Registrar {
	if label == "" {
		label = DefaultLabel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{registry: reg, exec: exec, label: label, logger: logger}
}

// RegisterAll adds one action per definition. A definition that cannot be
// registered is logged and skipped.
func (r *Registrar) RegisterAll(defs Collection) *Registration {
	h := &Registration{ids: make([]string, 0, len(defs))}
	for _, def := range defs {
		action := registry.Action{
			ID:   ActionID(def.ID),
			Name: DisplayName(r.label, def.Name),
			Handler: func(ctx context.Context) error {
				return r.exec.Run(ctx, def)
			},
		}
		if err := r.registry.Add(action); err != nil {
			r.logger.Error("command: register",
				slog.String("id", def.ID),
				slog.String("name", def.Name),
				slog.String("error", err.Error()))
			continue
		}
		h.ids = append(h.ids, action.ID)
	}
	return h
}

// UnregisterAll removes every action owned by h. A nil handle is a no-op.
func (r *Registrar) UnregisterAll(h *Registration) {
	if h == nil {
		return
	}
	for _, id := range h.ids {
		r.registry.Remove(id)
	}
}

// Manager owns the current registration and replaces it wholesale.
type Manager struct {
	registrar *Registrar

	mu      sync.Mutex
	current *Registration
}

// NewManager creates a Manager with nothing registered.
func NewManager(registrar *Registrar) *Manager {
	return &Manager{registrar: registrar}
}

// Rebuild drops the previous registration and registers defs.
func (m *Manager) Rebuild(defs Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrar.UnregisterAll(m.current)
	m.current = m.registrar.RegisterAll(defs)
	m.registrar.logger.Info("command: registered custom commands",
		slog.Int("count", len(m.current.ids)))
}

// Close removes everything the manager registered.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrar.UnregisterAll(m.current)
	m.current = nil
}

// Registered returns the ids currently registered.
func (m *Manager) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.IDs()
}
