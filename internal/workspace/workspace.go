// Package workspace tracks the notes a user has open and which one is
// active for editing.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/parser"
	"github.com/starford/notecmd/internal/storage"
)

// Workspace event types.
const (
	EventOpened  = "note.opened"
	EventClosed  = "note.closed"
	EventUpdated = "note.updated"
)

// PublishFunc receives workspace events.
type PublishFunc func(eventType string, data map[string]string)

// Tab is one open note.
type Tab struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Window    int       `json:"window"`
	Placement Placement `json:"placement"`
	OpenedAt  time.Time `json:"opened_at"`
}

// Workspace is the headless host's set of open notes. The active tab is the
// editable surface snippets are inserted into.
type Workspace struct {
	store   storage.Provider
	publish PublishFunc
	logger  *slog.Logger

	mu      sync.Mutex
	tabs    []Tab
	active  int
	windows int
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithPublisher sets the event sink.
func WithPublisher(p PublishFunc) Option {
	return func(w *Workspace) { w.publish = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// New creates an empty workspace over store.
func New(store storage.Provider, opts ...Option) *Workspace {
	w := &Workspace{
		store:   store,
		publish: func(string, map[string]string) {},
		logger:  slog.Default(),
		active:  -1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open shows the note at path according to placement and makes it active.
func (w *Workspace) Open(_ context.Context, path string, placement Placement) (Tab, error) {
	if !w.store.Exists(path) {
		return Tab{}, fmt.Errorf("workspace: open %s: %w", path, apperr.ErrNotFound)
	}
	data, err := w.store.Read(path)
	if err != nil {
		return Tab{}, fmt.Errorf("workspace: open %s: %w", path, err)
	}
	tab := Tab{
		Path:      path,
		Title:     parser.Title(path, data),
		Placement: placement,
		OpenedAt:  time.Now(),
	}

	w.mu.Lock()
	switch {
	case placement == PlacementWindow:
		w.windows++
		tab.Window = w.windows
		w.tabs = append(w.tabs, tab)
		w.active = len(w.tabs) - 1
	case placement == PlacementTab || w.active < 0:
		if w.active >= 0 {
			tab.Window = w.tabs[w.active].Window
		}
		w.tabs = append(w.tabs, tab)
		w.active = len(w.tabs) - 1
	default:
		tab.Window = w.tabs[w.active].Window
		w.tabs[w.active] = tab
	}
	w.mu.Unlock()

	w.logger.Debug("workspace: opened",
		slog.String("path", path),
		slog.String("placement", string(placement)))
	w.publish(EventOpened, map[string]string{
		"path":      path,
		"title":     tab.Title,
		"placement": string(placement),
	})
	return tab, nil
}

// Active returns the active tab.
func (w *Workspace) Active() (Tab, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active < 0 {
		return Tab{}, false
	}
	return w.tabs[w.active], true
}

// Tabs returns all open tabs in opening order.
func (w *Workspace) Tabs() []Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Tab, len(w.tabs))
	copy(out, w.tabs)
	return out
}

// CloseActive closes the active tab; the most recently opened remaining tab
// becomes active.
func (w *Workspace) CloseActive(_ context.Context) error {
	w.mu.Lock()
	if w.active < 0 {
		w.mu.Unlock()
		return fmt.Errorf("workspace: close: %w", apperr.ErrNoActiveEditor)
	}
	closed := w.tabs[w.active]
	w.tabs = append(w.tabs[:w.active], w.tabs[w.active+1:]...)
	w.active = len(w.tabs) - 1
	w.mu.Unlock()

	w.publish(EventClosed, map[string]string{"path": closed.Path})
	return nil
}

// Close closes every tab showing path.
func (w *Workspace) Close(_ context.Context, path string) error {
	w.mu.Lock()
	kept := w.tabs[:0]
	for _, t := range w.tabs {
		if t.Path != path {
			kept = append(kept, t)
		}
	}
	removed := len(w.tabs) - len(kept)
	w.tabs = kept
	w.active = len(w.tabs) - 1
	w.mu.Unlock()

	if removed == 0 {
		return fmt.Errorf("workspace: close %s: %w", path, apperr.ErrNotFound)
	}
	w.publish(EventClosed, map[string]string{"path": path})
	return nil
}

// ReplaceSelection inserts text into the active note. The headless editor
// keeps its caret at the end of the document, so text is appended.
func (w *Workspace) ReplaceSelection(_ context.Context, text string) error {
	tab, ok := w.Active()
	if !ok {
		return apperr.ErrNoActiveEditor
	}
	data, err := w.store.Read(tab.Path)
	if err != nil {
		return fmt.Errorf("workspace: insert into %s: %w", tab.Path, err)
	}
	if err := w.store.Write(tab.Path, append(data, text...)); err != nil {
		return fmt.Errorf("workspace: insert into %s: %w", tab.Path, err)
	}
	w.publish(EventUpdated, map[string]string{"path": tab.Path})
	return nil
}
