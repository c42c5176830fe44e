package template

import "regexp"

var (
	// dateRe also accepts a lone sign or lone digits; those carry no offset.
	dateRe = regexp.MustCompile(`\{\{date([+-])?(\d+)?(?::([^}]+))?\}\}`)
	timeRe = regexp.MustCompile(`\{\{time(?::([^}]+))?\}\}`)
)
