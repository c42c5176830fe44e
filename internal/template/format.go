package template

import (
	"fmt"
	"strings"
	"time"
)

// formatToken maps one format directive to its rendering.
type formatToken struct {
	token  string
	render func(t time.Time) string
}

// dateTokens are the directives of {{date:FMT}}, ordered longest first
// within each overlapping family so a directive is never matched by one of
// its own prefixes.
var dateTokens = []formatToken{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"dddd", func(t time.Time) string { return t.Weekday().String() }},
	{"mmmm", func(t time.Time) string { return t.Month().String() }},
	{"ddd", func(t time.Time) string { return t.Weekday().String()[:3] }},
	{"mmm", func(t time.Time) string { return t.Month().String()[:3] }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
}

// timeTokens are the directives of {{time:FMT}}.
var timeTokens = []formatToken{
	{"HH", func(t time.Time) string { return fmt.Sprintf("%02d", t.Hour()) }},
	{"hh", func(t time.Time) string { return fmt.Sprintf("%02d", hour12(t.Hour())) }},
	{"mm", func(t time.Time) string { return fmt.Sprintf("%02d", t.Minute()) }},
	{"ss", func(t time.Time) string { return fmt.Sprintf("%02d", t.Second()) }},
	{"A", func(t time.Time) string {
		if t.Hour() >= 12 {
			return "PM"
		}
		return "AM"
	}},
}

// FormatDate renders the date part of t:
//
//	YYYY  4-digit year          dddd  weekday name
//	MM    month, 2 digits       ddd   weekday, 3 letters
//	DD    day, 2 digits         mmmm  month name
//	                            mmm   month, 3 letters
//
// Time directives are not recognised here, so "YYYY Agenda" keeps its "A".
func FormatDate(t time.Time, layout string) string {
	return format(t, layout, dateTokens)
}

// FormatTime renders the time of day of t:
//
//	HH  24-hour, 2 digits       mm  minute, 2 digits
//	hh  12-hour, 2 digits       ss  second, 2 digits
//	A   AM or PM
func FormatTime(t time.Time, layout string) string {
	return format(t, layout, timeTokens)
}

// format matches directives case-sensitively in a single left-to-right pass;
// rendered text is never scanned again. Anything else is copied verbatim.
func format(t time.Time, layout string, tokens []formatToken) string {
	var b strings.Builder
	b.Grow(len(layout) + 8)

	for i := 0; i < len(layout); {
		matched := false
		for _, ft := range tokens {
			if strings.HasPrefix(layout[i:], ft.token) {
				b.WriteString(ft.render(t))
				i += len(ft.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(layout[i])
			i++
		}
	}
	return b.String()
}

func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}
