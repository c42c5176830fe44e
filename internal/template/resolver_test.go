package template

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// friday is 2024-03-15, a Friday.
var friday = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestResolveAt_DatePlaceholders(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare date", "{{date}}", "2024-03-15"},
		{"minus one", "{{date-1}}", "2024-03-14"},
		{"plus one", "{{date+1}}", "2024-03-16"},
		{"month boundary", "{{date+17}}", "2024-04-01"},
		{"leap day", "{{date-15}}", "2024-02-29"},
		{"custom format", "{{date:dddd, mmmm DD}}", "Friday, March 15"},
		{"offset and format", "{{date+2:ddd DD mmm YYYY}}", "Sun 17 Mar 2024"},
		{"weekday and month name", "{{weekday}}-{{monthName}}", "Friday-March"},
		{"simple parts", "{{year}}/{{month}}/{{day}}", "2024/03/15"},
		{"path", "Daily/{{date}}-{{weekday}}", "Daily/2024-03-15-Friday"},
		{"repeated", "{{date}} {{date}}", "2024-03-15 2024-03-15"},
		{"sign without digits", "{{date+}}", "2024-03-15"},
		{"digits without sign", "{{date7}}", "2024-03-15"},
		{"unknown left verbatim", "{{title}} {{date}}", "{{title}} 2024-03-15"},
		{"unterminated left verbatim", "{{date", "{{date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.ResolveAt(tc.in, friday))
		})
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))
	assert.Equal(t, "", r.Resolve(""))
	assert.Equal(t, "", r.ResolveAt("", friday))
}

func TestResolve_UsesClockAsReference(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))
	assert.Equal(t, "2024-03-15 09:30", r.Resolve("{{date}} {{time}}"))
}

func TestResolveAt_TimeIgnoresReferenceInstant(t *testing.T) {
	wall := time.Date(2026, time.October, 15, 15, 4, 5, 0, time.UTC)
	r := New(WithClock(fixedClock(wall)))

	got := r.ResolveAt("{{date}} {{time:hh:mm A}} {{time}} {{time:HH:mm:ss}}", friday)
	assert.Equal(t, "2024-03-15 03:04 PM 15:04 15:04:05", got)
}

func TestResolveAt_OffsetFromLateReference(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))
	ref := time.Date(2024, time.March, 31, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, "2024-04-01", r.ResolveAt("{{date+1}}", ref))
}

func TestResolveAt_DateAndTimeDirectivesStaySeparate(t *testing.T) {
	wall := time.Date(2026, time.October, 15, 15, 4, 5, 0, time.UTC)
	r := New(WithClock(fixedClock(wall)))

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"word with A in date format", "{{date:YYYY Agenda}}", "2024 Agenda"},
		{"time directives in date format", "{{date:YYYY-MM-DD HH:mm}}", "2024-03-15 HH:mm"},
		{"date directives in time format", "{{time:YYYY HH:mm}}", "YYYY 15:04"},
		{"mm is minutes in time format", "{{time:mm}}", "04"},
		{"mmm is month in date format", "{{date:mmm}}", "Mar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.ResolveAt(tc.in, friday))
		})
	}
}

func TestResolveAt_HugeOffsetLeftVerbatim(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))
	in := "{{date+99999999999999999999999}}"
	assert.Equal(t, in, r.ResolveAt(in, friday))
}

func TestResolveAt_TemplateContent(t *testing.T) {
	r := New(WithClock(fixedClock(friday)))
	content := "---\ntitle: {{date:dddd}}\n---\n# {{monthName}} {{day}}\nYesterday: [[{{date-1}}]]\n"
	got := r.ResolveAt(content, friday)
	require.NotContains(t, got, "{{")
	assert.True(t, strings.HasPrefix(got, "---\ntitle: Friday\n---\n# March 15\n"))
	assert.Contains(t, got, "[[2024-03-14]]")
}
