package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/notecmd/internal/notify"
)

// StepDelay is the pause after each successfully invoked step, letting the
// host settle before the next one starts.
const StepDelay = 50 * time.Millisecond

// ErrNoValidNames is returned when the name list is empty after trimming.
var ErrNoValidNames = errors.New("no valid command names")

// Failure is a step whose action returned an error.
type Failure struct {
	Name string
	Err  error
}

// Report describes the outcome of one sequence run. Partial success is the
// normal outcome.
type Report struct {
	Executed    []string
	NotFound    []string
	Failed      []Failure
	Suggestions map[string]string
}

// OK reports whether every step ran without error.
func (r *Report) OK() bool {
	return len(r.NotFound) == 0 && len(r.Failed) == 0
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration)

// Dispatcher invokes actions by display name, strictly one after another.
type Dispatcher struct {
	catalog  Catalog
	lookup   Lookup
	notifier notify.Notifier
	logger   *slog.Logger
	sleep    SleepFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLookup replaces the default name lookup.
func WithLookup(l Lookup) Option {
	return func(d *Dispatcher) { d.lookup = l }
}

// WithNotifier sets the notice sink.
func WithNotifier(n notify.Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithSleep replaces the inter-step wait.
func WithSleep(s SleepFunc) Option {
	return func(d *Dispatcher) { d.sleep = s }
}

// NewDispatcher creates a Dispatcher over catalog.
func NewDispatcher(catalog Catalog, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:  catalog,
		notifier: notify.Multi{},
		logger:   slog.Default(),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.lookup == nil {
		d.lookup = NewLookup(catalog)
	}
	return d
}

// ParseNames splits a comma-separated list, trimming blanks and dropping
// empty entries.
func ParseNames(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Run resolves and invokes each name in namesCSV in order. A failing or
// unknown step never stops the remaining ones; they are collected in the
// report. The only error is ErrNoValidNames.
func (d *Dispatcher) Run(ctx context.Context, namesCSV string) (*Report, error) {
	if namesCSV == "" {
		d.notifier.Notify(ctx, "No command names provided for sequence.")
		return nil, ErrNoValidNames
	}
	names := ParseNames(namesCSV)
	if len(names) == 0 {
		d.notifier.Notify(ctx, "No valid command names found in sequence.")
		return nil, ErrNoValidNames
	}

	rep := &Report{}
	for _, name := range names {
		action, ok := d.lookup.ResolveByDisplayName(name)
		if !ok {
			d.logger.Warn("sequence: command not found", slog.String("name", name))
			rep.NotFound = append(rep.NotFound, name)
			continue
		}

		if err := d.invoke(ctx, action.ID); err != nil {
			d.logger.Error("sequence: command failed",
				slog.String("name", name),
				slog.String("id", action.ID),
				slog.String("error", err.Error()))
			if !notify.AlreadyReported(err) {
				d.notifier.Notify(ctx, fmt.Sprintf("Error executing command %q: %v", name, err))
			}
			rep.Failed = append(rep.Failed, Failure{Name: name, Err: err})
			continue
		}
		rep.Executed = append(rep.Executed, name)
		d.sleep(ctx, StepDelay)
	}

	if len(rep.NotFound) > 0 {
		d.notifier.Notify(ctx, d.notFoundNotice(rep))
	}
	return rep, nil
}

// invoke runs one step, turning a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return d.catalog.Invoke(ctx, id)
}

func (d *Dispatcher) notFoundNotice(rep *Report) string {
	actions := d.catalog.List()
	parts := make([]string, 0, len(rep.NotFound))
	for _, name := range rep.NotFound {
		if s := Suggest(actions, name); s != "" {
			if rep.Suggestions == nil {
				rep.Suggestions = make(map[string]string)
			}
			rep.Suggestions[name] = s
			parts = append(parts, fmt.Sprintf("%s (did you mean %q?)", name, s))
			continue
		}
		parts = append(parts, name)
	}
	return "Sequence finished. Could not find commands: " + strings.Join(parts, ", ")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
