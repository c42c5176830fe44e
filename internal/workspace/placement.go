package workspace

import (
	"fmt"
	"strings"

	"github.com/starford/notecmd/internal/apperr"
)

// Placement controls where an opened note appears.
type Placement string

// Placements.
const (
	PlacementCurrent Placement = "current"
	PlacementTab     Placement = "tab"
	PlacementWindow  Placement = "window"
)

// ParsePlacement accepts the canonical names plus the boolean spellings used
// by the settings file ("false" = current tab, "true" = new tab).
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "current", "split":
		return PlacementCurrent, nil
	case "true", "tab":
		return PlacementTab, nil
	case "window":
		return PlacementWindow, nil
	default:
		return "", fmt.Errorf("workspace: unknown placement %q: %w", s, apperr.ErrInvalidInput)
	}
}
