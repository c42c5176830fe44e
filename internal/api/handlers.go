package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListActions handles GET /api/actions.
//
//	@Summary		List registered actions
//	@Tags			actions
//	@Produce		json
//	@Success		200	{object}	ActionListResponse
//	@Security		BearerAuth
//	@Router			/actions [get]
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ActionListResponse{Actions: h.svc.ListActions(r.Context())})
}

// RunAction handles POST /api/actions/{id}/run.
//
//	@Summary		Run one action
//	@Tags			actions
//	@Produce		json
//	@Param			id		path		string	true	"Action id"
//	@Param			date	query		string	false	"Date for create-with-date commands (today, yesterday, tomorrow, YYYY-MM-DD)"
//	@Success		200		{object}	service.RunResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/actions/{id}/run [post]
func (h *Handler) RunAction(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RunAction(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, "run action", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListCommands handles GET /api/commands.
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CommandListResponse{Commands: h.svc.ListCommands(r.Context())})
}

// GetCommand handles GET /api/commands/{id}.
func (h *Handler) GetCommand(w http.ResponseWriter, r *http.Request) {
	def, err := h.svc.GetCommand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get command", err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// AddCommand handles POST /api/commands. An empty body adds a default
// "New command".
//
//	@Summary		Add a custom command
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			body	body		command.Definition	false	"Command to add"
//	@Success		201		{object}	command.Definition
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands [post]
func (h *Handler) AddCommand(w http.ResponseWriter, r *http.Request) {
	var def command.Definition
	if r.ContentLength != 0 && !decodeJSON(w, r, &def) {
		return
	}
	added, err := h.svc.AddCommand(r.Context(), def)
	if err != nil {
		writeError(w, "add command", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateCommand handles PUT /api/commands/{id}.
//
//	@Summary		Edit a custom command
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Command id"
//	@Param			body	body		UpdateCommandRequest	true	"Fields to change"
//	@Success		200		{object}	command.Definition
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands/{id} [put]
func (h *Handler) UpdateCommand(w http.ResponseWriter, r *http.Request) {
	var req UpdateCommandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	def, err := h.svc.UpdateCommand(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update command", err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// DeleteCommand handles DELETE /api/commands/{id}.
func (h *Handler) DeleteCommand(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCommand(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete command", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPlacement handles GET /api/settings/placement.
func (h *Handler) GetPlacement(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PlacementResponse{Leaf: string(h.svc.Placement())})
}

// SetPlacement handles PUT /api/settings/placement.
func (h *Handler) SetPlacement(w http.ResponseWriter, r *http.Request) {
	var req PlacementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SetPlacement(r.Context(), req.Leaf)
	if err != nil {
		writeError(w, "set placement", err)
		return
	}
	writeJSON(w, http.StatusOK, PlacementResponse{Leaf: string(p)})
}

// RunSequence handles POST /api/sequences/run.
//
//	@Summary		Run an ad hoc sequence of action names
//	@Tags			actions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SequenceRequest	true	"Names to run"
//	@Success		200		{object}	service.RunResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sequences/run [post]
func (h *Handler) RunSequence(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RunSequence(r.Context(), req.Names, req.Date)
	if err != nil {
		if res != nil && errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "no valid command names", Notices: res.Notices})
			return
		}
		writeError(w, "run sequence", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Resolve handles GET /api/resolve.
//
//	@Summary		Preview placeholder expansion
//	@Tags			templates
//	@Produce		json
//	@Param			template	query		string	true	"Text containing placeholders"
//	@Param			date		query		string	false	"Reference date"
//	@Success		200			{object}	ResolveResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tmpl := q.Get("template")
	if tmpl == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'template' is required"))
		return
	}
	out, err := h.svc.Resolve(r.Context(), tmpl, q.Get("date"))
	if err != nil {
		writeError(w, "resolve", err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Template: tmpl, Result: out})
}

// Runs handles GET /api/runs.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	runs, err := h.svc.Runs(r.Context(), q.Get("action"), limit)
	if err != nil {
		writeError(w, "list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// Notes handles GET /api/notes.
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Notes(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes})
}
