// Package notify delivers user-visible notices.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Notifier is a fire-and-forget, user-visible message sink.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg string)

// Notify calls f.
func (f Func) Notify(ctx context.Context, msg string) { f(ctx, msg) }

// Log writes notices to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Notify logs msg at info level.
func (l Log) Notify(ctx context.Context, msg string) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notice", slog.String("message", msg))
}

// Multi fans a notice out to every notifier, then to the recorder attached to
// ctx, if any.
type Multi []Notifier

// Notify delivers msg to all sinks.
func (m Multi) Notify(ctx context.Context, msg string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, msg)
		}
	}
	if rec := FromContext(ctx); rec != nil {
		rec.Notify(ctx, msg)
	}
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

// Notify records msg.
func (r *Recorder) Notify(_ context.Context, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded notices.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

type recorderKey struct{}

// Collect attaches a fresh Recorder to ctx. Notices sent through Multi while
// handling ctx are also captured by it.
func Collect(ctx context.Context) (context.Context, *Recorder) {
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// FromContext returns the recorder attached by Collect.
func FromContext(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}

// reportedError marks an error whose notice has already been delivered.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Reported marks err as already surfaced to the user so callers further up
// do not notify about it a second time.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// AlreadyReported reports whether err, or any error it wraps, was marked by
// Reported.
func AlreadyReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
