package api

import (
	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/service"
)

// ActionListResponse wraps the registered actions.
type ActionListResponse struct {
	Actions []service.ActionInfo `json:"actions"`
}

// CommandListResponse wraps the custom command definitions.
type CommandListResponse struct {
	Commands command.Collection `json:"commands"`
}

// UpdateCommandRequest is the request body for editing a command.
type UpdateCommandRequest = service.CommandUpdate

// PlacementRequest sets where opened notes go.
type PlacementRequest struct {
	Leaf string `json:"leaf" example:"tab"`
}

// PlacementResponse reports the current placement.
type PlacementResponse struct {
	Leaf string `json:"leaf" example:"current"`
}

// SequenceRequest is an ad hoc sequence.
type SequenceRequest struct {
	Names string `json:"names" example:"Create today, Start day"`
	Date  string `json:"date,omitempty" example:"2024-03-15"`
}

// ResolveResponse is the resolver preview.
type ResolveResponse struct {
	Template string `json:"template"`
	Result   string `json:"result"`
}

// RunListResponse wraps journaled runs.
type RunListResponse struct {
	Runs []history.Run `json:"runs"`
}

// NoteListResponse wraps the vault's note paths.
type NoteListResponse struct {
	Notes []string `json:"notes"`
}
