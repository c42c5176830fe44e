package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/notecmd/internal/apperr"
	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/notify"
	"github.com/starford/notecmd/internal/sequence"
	"github.com/starford/notecmd/internal/storage"
	"github.com/starford/notecmd/internal/template"
	"github.com/starford/notecmd/internal/workspace"
)

// Opener shows a note in the workspace.
type Opener interface {
	Open(ctx context.Context, path string, placement workspace.Placement) (workspace.Tab, error)
}

// Editor is the active editable surface.
type Editor interface {
	ReplaceSelection(ctx context.Context, text string) error
}

// SequenceRunner runs a comma-separated list of display names.
type SequenceRunner interface {
	Run(ctx context.Context, namesCSV string) (*sequence.Report, error)
}

// Runner executes definitions against the vault and workspace.
type Runner struct {
	vault     storage.Provider
	opener    Opener
	editor    Editor
	sequences SequenceRunner
	dates     DatePrompt
	resolver  *template.Resolver
	notifier  notify.Notifier
	logger    *slog.Logger
	journal   history.Journal
	placement func() workspace.Placement
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDatePrompt sets the date source for create-with-date commands.
func WithDatePrompt(p DatePrompt) RunnerOption {
	return func(r *Runner) { r.dates = p }
}

// WithResolver sets the placeholder resolver.
func WithResolver(res *template.Resolver) RunnerOption {
	return func(r *Runner) { r.resolver = res }
}

// WithNotifier sets the notice sink.
func WithNotifier(n notify.Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithJournal records every run.
func WithJournal(j history.Journal) RunnerOption {
	return func(r *Runner) { r.journal = j }
}

// WithPlacement sets where opened notes go. It is read on every open so
// settings changes apply immediately.
func WithPlacement(f func() workspace.Placement) RunnerOption {
	return func(r *Runner) { r.placement = f }
}

// NewRunner creates a Runner.
func NewRunner(vault storage.Provider, opener Opener, editor Editor, sequences SequenceRunner, opts ...RunnerOption) *Runner {
	r := &Runner{
		vault:     vault,
		opener:    opener,
		editor:    editor,
		sequences: sequences,
		notifier:  notify.Multi{},
		logger:    slog.Default(),
		placement: func() workspace.Placement { return workspace.PlacementCurrent },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolver == nil {
		r.resolver = template.New()
	}
	if r.dates == nil {
		r.dates = ContextPrompt{Now: r.resolver.Now}
	}
	return r
}

// Run executes def. Errors and panics from collaborators are logged and
// turned into a notice here; the returned error is already marked as
// reported so enclosing sequences count the failure without repeating it.
func (r *Runner) Run(ctx context.Context, def Definition) (err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			r.logger.Error("command: run failed",
				slog.String("id", def.ID),
				slog.String("name", def.Name),
				slog.String("error", err.Error()))
			r.notifier.Notify(ctx, fmt.Sprintf("Error executing command %s: %v", def.Name, err))
			err = notify.Reported(err)
		}
		r.record(ctx, def, start, err)
	}()

	switch v := def.Variant().(type) {
	case Open:
		return r.open(ctx, v.Path)
	case Create:
		return r.create(ctx, v.Path, v.TemplatePath, r.resolver.Now())
	case CreateWithDate:
		ref, err := r.dates.PromptForDate(ctx)
		if err != nil {
			return fmt.Errorf("command: choose date: %w", err)
		}
		return r.create(ctx, v.Path, v.TemplatePath, ref)
	case Insert:
		return r.insert(ctx, v.Snippet)
	case Sequence:
		return r.runSequence(ctx, def.ID, v.Names)
	default:
		r.notifier.Notify(ctx, fmt.Sprintf("Unknown command type: %s", def.Kind))
		return nil
	}
}

func (r *Runner) record(ctx context.Context, def Definition, start time.Time, runErr error) {
	if r.journal == nil {
		return
	}
	run := history.Run{
		ActionID:   ActionID(def.ID),
		Name:       def.Name,
		Kind:       string(def.EffectiveKind()),
		Status:     history.StatusOK,
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	if err := r.journal.Record(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("command: journal run", slog.String("id", def.ID), slog.String("error", err.Error()))
	}
}

func withMarkdownExt(p string) string {
	if strings.HasSuffix(p, ".md") {
		return p
	}
	return p + ".md"
}

func (r *Runner) open(ctx context.Context, rawPath string) error {
	p := strings.TrimSpace(r.resolver.Resolve(rawPath))
	if p == "" {
		r.notifier.Notify(ctx, "No note path specified")
		return nil
	}
	p = withMarkdownExt(p)

	target, ok := r.locate(p)
	if !ok {
		r.notifier.Notify(ctx, fmt.Sprintf("Note %q not found.", p))
		return nil
	}
	if _, err := r.opener.Open(ctx, target, r.placement()); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// lister is implemented by vaults that can enumerate notes.
type lister interface {
	List() ([]string, error)
}

// locate finds p by exact path, or failing that the first note anywhere in
// the vault with the same file name, the way wiki links resolve.
func (r *Runner) locate(p string) (string, bool) {
	if r.vault.Exists(p) {
		return p, true
	}
	if strings.Contains(p, "/") {
		return "", false
	}
	l, ok := r.vault.(lister)
	if !ok {
		return "", false
	}
	notes, err := l.List()
	if err != nil {
		r.logger.Warn("command: list vault", slog.String("error", err.Error()))
		return "", false
	}
	for _, n := range notes {
		if strings.EqualFold(path.Base(n), p) {
			return n, true
		}
	}
	return "", false
}

func (r *Runner) create(ctx context.Context, rawPath, rawTemplate string, ref time.Time) error {
	p := strings.TrimSpace(r.resolver.ResolveAt(rawPath, ref))
	if p == "" {
		r.notifier.Notify(ctx, "No note path specified for creation.")
		return nil
	}
	p = withMarkdownExt(p)

	if r.vault.Exists(p) {
		return r.openExisting(ctx, p)
	}

	if dir := path.Dir(p); dir != "." && !r.vault.IsDir(dir) {
		if err := r.vault.CreateFolder(dir); err != nil {
			return fmt.Errorf("create folder %s: %w", dir, err)
		}
	}

	content, err := r.templateContent(ctx, rawTemplate, ref)
	if err != nil {
		return err
	}

	if err := r.vault.Create(p, []byte(content)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return r.openExisting(ctx, p)
		}
		return fmt.Errorf("create note %s: %w", p, err)
	}
	r.notifier.Notify(ctx, fmt.Sprintf("Created note: %q", p))
	if _, err := r.opener.Open(ctx, p, r.placement()); err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	return nil
}

func (r *Runner) openExisting(ctx context.Context, p string) error {
	r.notifier.Notify(ctx, fmt.Sprintf("Note %q already exists. Opening it.", p))
	if _, err := r.opener.Open(ctx, p, r.placement()); err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	return nil
}

// templateContent reads and resolves the template. A template that does not
// exist yields empty content after a notice.
func (r *Runner) templateContent(ctx context.Context, rawTemplate string, ref time.Time) (string, error) {
	tp := strings.TrimSpace(r.resolver.ResolveAt(rawTemplate, ref))
	if tp == "" {
		return "", nil
	}
	if !r.vault.Exists(tp) {
		if !r.vault.Exists(withMarkdownExt(tp)) {
			r.notifier.Notify(ctx, fmt.Sprintf("Template file %q not found.", tp))
			return "", nil
		}
		tp = withMarkdownExt(tp)
	}
	data, err := r.vault.Read(tp)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", tp, err)
	}
	return r.resolver.ResolveAt(string(data), ref), nil
}

func (r *Runner) insert(ctx context.Context, rawSnippet string) error {
	snippet := r.resolver.Resolve(rawSnippet)
	if snippet == "" {
		r.notifier.Notify(ctx, "No snippet specified")
		return nil
	}
	err := r.editor.ReplaceSelection(ctx, snippet)
	if errors.Is(err, apperr.ErrNoActiveEditor) {
		r.notifier.Notify(ctx, "No active editor found to insert snippet.")
		return nil
	}
	return err
}

func (r *Runner) runSequence(ctx context.Context, id, names string) error {
	ctx, err := sequence.Enter(ctx, id)
	if err != nil {
		return err
	}
	// The dispatcher reports empty and unknown names itself.
	if _, err := r.sequences.Run(ctx, names); err != nil && !errors.Is(err, sequence.ErrNoValidNames) {
		return err
	}
	return nil
}
