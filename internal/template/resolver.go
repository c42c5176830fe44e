// Package template expands {{...}} date and time placeholders in note paths,
// template content and snippets.
package template

import (
	"strconv"
	"strings"
	"time"
)

// Default formats used when a placeholder carries no explicit format.
const (
	DefaultDateFormat = "YYYY-MM-DD"
	DefaultTimeFormat = "HH:mm"
)

// Clock returns the current wall-clock instant.
type Clock func() time.Time

// Resolver expands placeholders against a reference instant.
//
// Placeholders are applied in a fixed order:
//
//  1. {{date}}, {{date:FMT}}, {{date+N}}, {{date-N}}, {{date+N:FMT}}, {{date-N:FMT}}
//  2. {{year}}, {{month}}, {{day}}, {{weekday}}, {{monthName}}
//  3. {{time}}, {{time:FMT}}
//
// Time placeholders always read the clock, even when a reference instant is
// supplied for the date placeholders. Unknown placeholders are left as-is.
type Resolver struct {
	now Clock
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(r *Resolver) {
		if c != nil {
			r.now = c
		}
	}
}

// New creates a Resolver reading the system clock unless overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the resolver's current instant.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Resolve expands s using the current instant as the reference date.
func (r *Resolver) Resolve(s string) string {
	if s == "" {
		return s
	}
	return r.ResolveAt(s, r.now())
}

// ResolveAt expands s using ref as the reference date.
func (r *Resolver) ResolveAt(s string, ref time.Time) string {
	if s == "" {
		return s
	}

	out := dateRe.ReplaceAllStringFunc(s, func(match string) string {
		return expandDate(match, ref)
	})

	out = strings.NewReplacer(
		"{{year}}", strconv.Itoa(ref.Year()),
		"{{month}}", FormatDate(ref, "MM"),
		"{{day}}", FormatDate(ref, "DD"),
		"{{weekday}}", ref.Weekday().String(),
		"{{monthName}}", ref.Month().String(),
	).Replace(out)

	now := r.now()
	out = timeRe.ReplaceAllStringFunc(out, func(match string) string {
		m := timeRe.FindStringSubmatch(match)
		layout := m[1]
		if layout == "" {
			layout = DefaultTimeFormat
		}
		return FormatTime(now, layout)
	})

	return out
}

func expandDate(match string, ref time.Time) string {
	m := dateRe.FindStringSubmatch(match)
	op, digits, layout := m[1], m[2], m[3]

	date := ref
	if op != "" && digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return match
		}
		if op == "-" {
			n = -n
		}
		// AddDate keeps the wall-clock time of day.
		date = ref.AddDate(0, 0, n)
	}

	if layout == "" {
		layout = DefaultDateFormat
	}
	return FormatDate(date, layout)
}

var defaultResolver = New()

// Resolve expands s against the system clock.
func Resolve(s string) string {
	return defaultResolver.Resolve(s)
}

// ResolveAt expands s with ref as the reference date and the system clock for
// time placeholders.
func ResolveAt(s string, ref time.Time) string {
	return defaultResolver.ResolveAt(s, ref)
}
