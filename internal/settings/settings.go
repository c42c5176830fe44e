// Package settings persists the user's commands and placement choice in a
// YAML file and watches it for edits made outside the process.
package settings

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/workspace"
)

// Settings is the persisted state.
type Settings struct {
	Commands command.Collection `yaml:"commands" json:"commands"`
	Leaf     Leaf               `yaml:"leaf" json:"leaf"`
}

// Defaults returns the settings of a fresh installation.
func Defaults() Settings {
	return Settings{Commands: command.Defaults(), Leaf: Leaf(workspace.PlacementCurrent)}
}

// Clone returns a copy that shares no command storage with s.
func (s Settings) Clone() Settings {
	s.Commands = slices.Clone(s.Commands)
	return s
}

// Validate checks the command collection.
func (s Settings) Validate() error {
	return s.Commands.Validate()
}

// Leaf is where opened notes are placed. On disk it is a boolean or a
// literal: false for the current tab, true for a new tab, "window" for a
// new window.
type Leaf workspace.Placement

// Placement returns the workspace placement, defaulting to the current tab.
func (l Leaf) Placement() workspace.Placement {
	if l == "" {
		return workspace.PlacementCurrent
	}
	return workspace.Placement(l)
}

// MarshalYAML implements yaml.Marshaler.
func (l Leaf) MarshalYAML() (any, error) {
	switch l.Placement() {
	case workspace.PlacementTab:
		return true, nil
	case workspace.PlacementWindow:
		return string(workspace.PlacementWindow), nil
	default:
		return false, nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Leaf) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("settings: leaf must be a boolean or string, line %d", n.Line)
	}
	p, err := workspace.ParsePlacement(n.Value)
	if err != nil {
		return err
	}
	*l = Leaf(p)
	return nil
}
