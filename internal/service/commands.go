package service

import (
	"context"
	"fmt"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/settings"
	"github.com/starford/notecmd/internal/workspace"
)

// CommandUpdate is a partial edit of one command. Nil fields are left
// unchanged. Kind is applied before Fields, so a kind switch and the new
// kind's fields can be set together.
type CommandUpdate struct {
	Name   *string           `json:"name,omitempty"`
	Kind   *command.Kind     `json:"type,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ListCommands returns the custom command definitions in display order.
func (s *Service) ListCommands(_ context.Context) command.Collection {
	cmds := s.settings.Current().Commands
	if cmds == nil {
		cmds = command.Collection{}
	}
	return cmds
}

// GetCommand returns one definition.
func (s *Service) GetCommand(_ context.Context, id string) (command.Definition, error) {
	d, ok := s.settings.Current().Commands.Get(id)
	if !ok {
		return command.Definition{}, fmt.Errorf("service: command %s: %w", id, apperr.ErrNotFound)
	}
	return d, nil
}

// AddCommand appends def, or a default "New command" when def is empty,
// saves the settings and rebuilds registration.
func (s *Service) AddCommand(_ context.Context, def command.Definition) (command.Definition, error) {
	var added command.Definition
	_, err := s.settings.Update(func(st *settings.Settings) error {
		if def == (command.Definition{}) {
			added = st.Commands.Add("")
			return nil
		}
		var err error
		added, err = st.Commands.Put(def)
		return err
	})
	if err != nil {
		return command.Definition{}, err
	}
	return added, nil
}

// UpdateCommand applies u to the command with the given id.
func (s *Service) UpdateCommand(_ context.Context, id string, u CommandUpdate) (command.Definition, error) {
	var updated command.Definition
	_, err := s.settings.Update(func(st *settings.Settings) error {
		if u.Name != nil {
			if err := st.Commands.SetName(id, *u.Name); err != nil {
				return err
			}
		}
		if u.Kind != nil {
			if err := st.Commands.SetKind(id, *u.Kind); err != nil {
				return err
			}
		}
		for f, v := range u.Fields {
			if err := st.Commands.SetField(id, command.Field(f), v); err != nil {
				return err
			}
		}
		d, ok := st.Commands.Get(id)
		if !ok {
			return fmt.Errorf("service: command %s: %w", id, apperr.ErrNotFound)
		}
		updated = d
		return nil
	})
	if err != nil {
		return command.Definition{}, err
	}
	return updated, nil
}

// DeleteCommand removes the command with the given id.
func (s *Service) DeleteCommand(_ context.Context, id string) error {
	_, err := s.settings.Update(func(st *settings.Settings) error {
		return st.Commands.Remove(id)
	})
	return err
}

// SetPlacement changes where opened notes go.
func (s *Service) SetPlacement(_ context.Context, value string) (workspace.Placement, error) {
	p, err := workspace.ParsePlacement(value)
	if err != nil {
		return "", err
	}
	if _, err := s.settings.Update(func(st *settings.Settings) error {
		st.Leaf = settings.Leaf(p)
		return nil
	}); err != nil {
		return "", err
	}
	return p, nil
}

// Placement returns the current placement.
func (s *Service) Placement() workspace.Placement {
	return s.settings.Placement()
}
