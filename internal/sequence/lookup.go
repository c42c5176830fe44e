// Package sequence runs ordered lists of actions referenced by display name.
package sequence

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/starford/notecmd/internal/registry"
)

// Catalog is the live set of invokable actions.
type Catalog interface {
	List() []registry.Action
	Invoke(ctx context.Context, id string) error
}

// Lookup resolves a human-readable name to a registered action.
type Lookup interface {
	ResolveByDisplayName(name string) (registry.Action, bool)
}

// labelSep separates an owning-component label from an action's own name,
// as in "Workspace: Close active note".
const labelSep = ": "

// MatchesDisplayName reports whether name refers to an action displayed as
// displayName. Comparison is case-insensitive against the full display name
// or against the part after the first ": ".
func MatchesDisplayName(displayName, name string) bool {
	dn := strings.ToLower(displayName)
	n := strings.ToLower(name)
	if dn == n {
		return true
	}
	if i := strings.Index(dn, labelSep); i >= 0 {
		return dn[i+len(labelSep):] == n
	}
	return false
}

// NameLookup resolves names against a Catalog, first match in catalog order.
type NameLookup struct {
	catalog Catalog
}

// NewLookup creates a NameLookup over c.
func NewLookup(c Catalog) *NameLookup {
	return &NameLookup{catalog: c}
}

// ResolveByDisplayName returns the first action whose display name matches.
func (l *NameLookup) ResolveByDisplayName(name string) (registry.Action, bool) {
	for _, a := range l.catalog.List() {
		if MatchesDisplayName(a.Name, name) {
			return a, true
		}
	}
	return registry.Action{}, false
}

const maxSuggestDistance = 3

// Suggest returns the registered short name closest to name, or "" when
// nothing is within a small edit distance.
func Suggest(actions []registry.Action, name string) string {
	type candidate struct {
		name string
		dist int
	}
	n := strings.ToLower(name)
	var cands []candidate
	for _, a := range actions {
		short := a.Name
		if i := strings.Index(short, labelSep); i >= 0 {
			short = short[i+len(labelSep):]
		}
		d := levenshtein.ComputeDistance(n, strings.ToLower(short))
		if d > 0 && d <= maxSuggestDistance {
			cands = append(cands, candidate{name: short, dist: d})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	return cands[0].name
}
