package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/notecmd/internal/apperr"
)

// DatePrompt supplies the reference date for create-with-date commands.
type DatePrompt interface {
	PromptForDate(ctx context.Context) (time.Time, error)
}

type dateKey struct{}

// WithDate attaches the date a caller chose for this request.
func WithDate(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, dateKey{}, t)
}

// DateFromContext returns the date attached by WithDate.
func DateFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(dateKey{}).(time.Time)
	return t, ok
}

// ContextPrompt answers with the date attached to the request, or today
// when the caller chose none.
type ContextPrompt struct {
	Now func() time.Time
}

// PromptForDate implements DatePrompt.
func (p ContextPrompt) PromptForDate(ctx context.Context) (time.Time, error) {
	if t, ok := DateFromContext(ctx); ok {
		return t, nil
	}
	if p.Now != nil {
		return p.Now(), nil
	}
	return time.Now(), nil
}

// ParseDate reads the picker's choices: "today", "yesterday", "tomorrow"
// (relative to now, keeping its time of day) or a YYYY-MM-DD calendar date
// at local midnight. An empty string means today.
func ParseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("command: parse date %q: %w", s, apperr.ErrInvalidInput)
	}
	return t, nil
}
