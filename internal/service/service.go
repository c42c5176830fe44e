// Package service assembles the command host and exposes the operations
// the REST API, MCP server and CLI share.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/command"
	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/notify"
	"github.com/starford/notecmd/internal/registry"
	"github.com/starford/notecmd/internal/sequence"
	"github.com/starford/notecmd/internal/settings"
	"github.com/starford/notecmd/internal/storage"
	"github.com/starford/notecmd/internal/template"
	"github.com/starford/notecmd/internal/workspace"
)

// Built-in host action ids.
const (
	ActionCloseActive    = "workspace:close-active"
	ActionReloadSettings = "workspace:reload-settings"
)

// Config holds the collaborators of a Service. Vault and Settings are
// required; everything else is optional.
type Config struct {
	Vault    *storage.FS
	Settings *settings.Service
	// History, when set, journals runs and serves Runs.
	History *history.DB
	// Journal receives runs in addition to History.
	Journal history.Journal
	// Notifier receives every user-visible notice.
	Notifier notify.Notifier
	// Publish receives workspace events.
	Publish workspace.PublishFunc
	// OnCommandsChanged is called after each registration rebuild.
	OnCommandsChanged func(count int)
	Clock             template.Clock
	Label             string
	Logger            *slog.Logger
	Sleep             sequence.SleepFunc
}

// Service coordinates the registry, custom commands and their settings.
type Service struct {
	vault      *storage.FS
	settings   *settings.Service
	history    *history.DB
	journal    history.Journal
	registry   *registry.Registry
	workspace  *workspace.Workspace
	dispatcher *sequence.Dispatcher
	manager    *command.Manager
	resolver   *template.Resolver
	notifier   notify.Notifier
	logger     *slog.Logger
	onChange   func(int)
}

// New wires a Service and registers the host actions and the current
// custom commands.
func New(cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		vault:    cfg.Vault,
		settings: cfg.Settings,
		history:  cfg.History,
		registry: registry.New(),
		resolver: template.New(template.WithClock(cfg.Clock)),
		notifier: notify.Multi{cfg.Notifier},
		logger:   logger,
		onChange: cfg.OnCommandsChanged,
	}

	var journals history.Multi
	if cfg.History != nil {
		journals = append(journals, cfg.History)
	}
	if cfg.Journal != nil {
		journals = append(journals, cfg.Journal)
	}
	if len(journals) > 0 {
		s.journal = journals
	}

	wsOpts := []workspace.Option{workspace.WithLogger(logger)}
	if cfg.Publish != nil {
		wsOpts = append(wsOpts, workspace.WithPublisher(cfg.Publish))
	}
	s.workspace = workspace.New(cfg.Vault, wsOpts...)

	dispOpts := []sequence.Option{sequence.WithNotifier(s.notifier), sequence.WithLogger(logger)}
	if cfg.Sleep != nil {
		dispOpts = append(dispOpts, sequence.WithSleep(cfg.Sleep))
	}
	s.dispatcher = sequence.NewDispatcher(s.registry, dispOpts...)

	runOpts := []command.RunnerOption{
		command.WithResolver(s.resolver),
		command.WithNotifier(s.notifier),
		command.WithLogger(logger),
		command.WithPlacement(cfg.Settings.Placement),
	}
	if s.journal != nil {
		runOpts = append(runOpts, command.WithJournal(s.journal))
	}
	runner := command.NewRunner(cfg.Vault, s.workspace, s.workspace, s.dispatcher, runOpts...)
	s.manager = command.NewManager(command.NewRegistrar(s.registry, runner, cfg.Label, logger))

	if err := s.registerHostActions(); err != nil {
		return nil, err
	}
	cfg.Settings.OnChange(s.rebuild)
	s.rebuild(cfg.Settings.Current())
	return s, nil
}

func (s *Service) registerHostActions() error {
	actions := []registry.Action{
		{
			ID:   ActionCloseActive,
			Name: "Workspace: Close active note",
			Handler: func(ctx context.Context) error {
				return s.workspace.CloseActive(ctx)
			},
		},
		{
			ID:   ActionReloadSettings,
			Name: "Workspace: Reload settings",
			Handler: func(context.Context) error {
				_, err := s.settings.Reload()
				return err
			},
		},
	}
	for _, a := range actions {
		if err := s.registry.Add(a); err != nil {
			return fmt.Errorf("service: register %s: %w", a.ID, err)
		}
	}
	return nil
}

func (s *Service) rebuild(st settings.Settings) {
	s.manager.Rebuild(st.Commands)
	if s.onChange != nil {
		s.onChange(len(s.manager.Registered()))
	}
}

// Close unregisters the custom commands.
func (s *Service) Close() {
	s.manager.Close()
}

// Registry exposes the action registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Workspace exposes the workspace.
func (s *Service) Workspace() *workspace.Workspace {
	return s.workspace
}

// ActionInfo describes a registered action.
type ActionInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// RunResult is the outcome of running an action or a sequence.
type RunResult struct {
	Notices   []string          `json:"notices"`
	Error     string            `json:"error,omitempty"`
	Executed  []string          `json:"executed,omitempty"`
	NotFound  []string          `json:"not_found,omitempty"`
	Failed    map[string]string `json:"failed,omitempty"`
	Suggested map[string]string `json:"suggestions,omitempty"`
}

func newRunResult(rec *notify.Recorder) *RunResult {
	msgs := rec.Messages()
	if msgs == nil {
		msgs = []string{}
	}
	return &RunResult{Notices: msgs}
}

// ListActions returns every registered action in registration order.
func (s *Service) ListActions(_ context.Context) []ActionInfo {
	actions := s.registry.List()
	out := make([]ActionInfo, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionInfo{ID: a.ID, Name: a.Name, Custom: isCustom(a.ID)})
	}
	return out
}

func isCustom(id string) bool {
	return strings.HasPrefix(id, command.ActionID(""))
}

// withDate parses date and attaches it for create-with-date commands.
func (s *Service) withDate(ctx context.Context, date string) (context.Context, error) {
	if date == "" {
		return ctx, nil
	}
	t, err := command.ParseDate(date, s.resolver.Now())
	if err != nil {
		return ctx, err
	}
	return command.WithDate(ctx, t), nil
}

// RunAction invokes the action with the given id. date, if set, answers
// the date prompt of create-with-date commands.
func (s *Service) RunAction(ctx context.Context, id, date string) (*RunResult, error) {
	if _, ok := s.registry.Get(id); !ok {
		return nil, fmt.Errorf("service: action %s: %w", id, apperr.ErrNotFound)
	}
	ctx, err := s.withDate(ctx, date)
	if err != nil {
		return nil, err
	}
	ctx, rec := notify.Collect(ctx)

	start := time.Now()
	runErr := s.invoke(ctx, id)
	res := newRunResult(rec)
	if runErr != nil {
		res.Error = runErr.Error()
	}
	// Custom commands journal themselves.
	if !isCustom(id) {
		s.record(ctx, id, id, "host", start, runErr)
	}
	return res, nil
}

// invoke runs one action, containing panics from host actions.
func (s *Service) invoke(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.registry.Invoke(ctx, id)
}

// RunActionByName resolves name the way sequences do and runs it.
func (s *Service) RunActionByName(ctx context.Context, name, date string) (*RunResult, error) {
	a, ok := sequence.NewLookup(s.registry).ResolveByDisplayName(name)
	if !ok {
		err := fmt.Errorf("service: action %q: %w", name, apperr.ErrNotFound)
		if hint := sequence.Suggest(s.registry.List(), name); hint != "" {
			err = fmt.Errorf("service: action %q (did you mean %q?): %w", name, hint, apperr.ErrNotFound)
		}
		return nil, err
	}
	return s.RunAction(ctx, a.ID, date)
}

// RunSequence runs a comma-separated list of display names once.
func (s *Service) RunSequence(ctx context.Context, names, date string) (*RunResult, error) {
	ctx, err := s.withDate(ctx, date)
	if err != nil {
		return nil, err
	}
	ctx, rec := notify.Collect(ctx)

	start := time.Now()
	rep, err := s.dispatcher.Run(ctx, names)
	res := newRunResult(rec)
	if errors.Is(err, sequence.ErrNoValidNames) {
		return res, fmt.Errorf("service: sequence: %w: %w", err, apperr.ErrInvalidInput)
	}

	res.Executed = rep.Executed
	res.NotFound = rep.NotFound
	res.Suggested = rep.Suggestions
	if len(rep.Failed) > 0 {
		res.Failed = make(map[string]string, len(rep.Failed))
		for _, f := range rep.Failed {
			res.Failed[f.Name] = f.Err.Error()
		}
	}
	var runErr error
	if !rep.OK() {
		runErr = fmt.Errorf("%d not found, %d failed", len(rep.NotFound), len(rep.Failed))
	}
	s.record(ctx, "sequence", names, string(command.KindSequence), start, runErr)
	return res, nil
}

func (s *Service) record(ctx context.Context, id, name, kind string, start time.Time, runErr error) {
	if s.journal == nil {
		return
	}
	r := history.Run{
		ActionID:   id,
		Name:       name,
		Kind:       kind,
		Status:     history.StatusOK,
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		r.Status = history.StatusFailed
		r.Error = runErr.Error()
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), r); err != nil {
		s.logger.Warn("service: journal run", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// Resolve expands placeholders in tmpl against date (today when empty).
func (s *Service) Resolve(_ context.Context, tmpl, date string) (string, error) {
	if date == "" {
		return s.resolver.Resolve(tmpl), nil
	}
	ref, err := command.ParseDate(date, s.resolver.Now())
	if err != nil {
		return "", err
	}
	return s.resolver.ResolveAt(tmpl, ref), nil
}

// Runs returns the latest journaled runs.
func (s *Service) Runs(ctx context.Context, actionID string, limit int) ([]history.Run, error) {
	if s.history == nil {
		return []history.Run{}, nil
	}
	var (
		runs []history.Run
		err  error
	)
	if actionID != "" {
		runs, err = s.history.ByAction(ctx, actionID, limit)
	} else {
		runs, err = s.history.Recent(ctx, limit)
	}
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return runs, nil
}

// Notes lists the vault's notes.
func (s *Service) Notes(_ context.Context) ([]string, error) {
	notes, err := s.vault.List()
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []string{}
	}
	return notes, nil
}
