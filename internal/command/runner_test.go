package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notecmd/internal/history"
	"github.com/starford/notecmd/internal/notify"
	"github.com/starford/notecmd/internal/registry"
	"github.com/starford/notecmd/internal/sequence"
	"github.com/starford/notecmd/internal/storage"
	"github.com/starford/notecmd/internal/template"
	"github.com/starford/notecmd/internal/workspace"
)

// Friday.
var fixedNow = time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)

type memJournal struct {
	mu   sync.Mutex
	runs []history.Run
}

func (j *memJournal) Record(_ context.Context, r history.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, r)
	return nil
}

type harness struct {
	vault    *storage.FS
	ws       *workspace.Workspace
	reg      *registry.Registry
	notices  *notify.Recorder
	journal  *memJournal
	runner   *Runner
	manager  *Manager
	sleeps   int
	opened   []string
	position workspace.Placement
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		vault:    storage.NewMemFS(),
		reg:      registry.New(),
		notices:  &notify.Recorder{},
		journal:  &memJournal{},
		position: workspace.PlacementCurrent,
	}
	for p, c := range files {
		require.NoError(t, h.vault.Write(p, []byte(c)))
	}
	h.ws = workspace.New(h.vault, workspace.WithPublisher(func(kind string, data map[string]string) {
		if kind == workspace.EventOpened {
			h.opened = append(h.opened, data["path"]+"@"+data["placement"])
		}
	}))
	disp := sequence.NewDispatcher(h.reg,
		sequence.WithNotifier(h.notices),
		sequence.WithLogger(logger),
		sequence.WithSleep(func(context.Context, time.Duration) { h.sleeps++ }),
	)
	h.runner = NewRunner(h.vault, h.ws, h.ws, disp,
		WithResolver(template.New(template.WithClock(func() time.Time { return fixedNow }))),
		WithNotifier(h.notices),
		WithLogger(logger),
		WithJournal(h.journal),
		WithPlacement(func() workspace.Placement { return h.position }),
	)
	h.manager = NewManager(NewRegistrar(h.reg, h.runner, "", logger))
	return h
}

func (h *harness) content(t *testing.T, p string) string {
	t.Helper()
	data, err := h.vault.Read(p)
	require.NoError(t, err)
	return string(data)
}

func TestRunOpen(t *testing.T) {
	h := newHarness(t, map[string]string{"Home.md": "# Home", "Daily/2024-03-15.md": "today"})
	ctx := context.Background()

	require.NoError(t, h.runner.Run(ctx, Definition{ID: "a", Name: "A", Kind: KindOpen, Path: "Home"}))
	h.position = workspace.PlacementTab
	require.NoError(t, h.runner.Run(ctx, Definition{ID: "b", Name: "B", Kind: KindOpen, Path: "Daily/{{date}}"}))

	assert.Equal(t, []string{"Home.md@current", "Daily/2024-03-15.md@tab"}, h.opened)
	assert.Empty(t, h.notices.Messages())
}

func TestRunOpen_ByFileName(t *testing.T) {
	h := newHarness(t, map[string]string{"Areas/Projects.md": "p"})
	require.NoError(t, h.runner.Run(context.Background(), Definition{ID: "a", Name: "A", Kind: KindOpen, Path: "projects"}))
	assert.Equal(t, []string{"Areas/Projects.md@current"}, h.opened)
}

func TestRunOpen_NotFoundAndEmpty(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	require.NoError(t, h.runner.Run(ctx, Definition{ID: "a", Name: "A", Kind: KindOpen, Path: "Nope"}))
	require.NoError(t, h.runner.Run(ctx, Definition{ID: "b", Name: "B", Kind: KindOpen}))

	assert.Equal(t, []string{`Note "Nope.md" not found.`, "No note path specified"}, h.notices.Messages())
	assert.Empty(t, h.opened)
}

func TestRunCreate_FromTemplate(t *testing.T) {
	h := newHarness(t, map[string]string{
		"Templates/Daily.md": "# {{weekday}}, {{monthName}} {{day}}\nYesterday: [[{{date-1}}]]",
	})

	def := Definition{ID: "c", Name: "Create today", Kind: KindCreate,
		Path: "Daily/{{date}}-{{weekday}}", TemplatePath: "Templates/Daily.md"}
	require.NoError(t, h.runner.Run(context.Background(), def))

	assert.Equal(t, "# Friday, March 15\nYesterday: [[2024-03-14]]", h.content(t, "Daily/2024-03-15-Friday.md"))
	assert.True(t, h.vault.IsDir("Daily"))
	assert.Equal(t, []string{`Created note: "Daily/2024-03-15-Friday.md"`}, h.notices.Messages())
	assert.Equal(t, []string{"Daily/2024-03-15-Friday.md@current"}, h.opened)
}

func TestRunCreate_ExistingIsOpenedNotOverwritten(t *testing.T) {
	h := newHarness(t, map[string]string{"Inbox.md": "keep me"})

	def := Definition{ID: "c", Name: "C", Kind: KindCreate, Path: "Inbox", TemplatePath: "tpl.md"}
	require.NoError(t, h.runner.Run(context.Background(), def))

	assert.Equal(t, "keep me", h.content(t, "Inbox.md"))
	assert.Equal(t, []string{`Note "Inbox.md" already exists. Opening it.`}, h.notices.Messages())
	assert.Equal(t, []string{"Inbox.md@current"}, h.opened)
}

func TestRunCreate_MissingTemplateGivesEmptyNote(t *testing.T) {
	h := newHarness(t, nil)

	def := Definition{ID: "c", Name: "C", Kind: KindCreate, Path: "New", TemplatePath: "Templates/Gone"}
	require.NoError(t, h.runner.Run(context.Background(), def))

	assert.Equal(t, "", h.content(t, "New.md"))
	assert.Equal(t, []string{
		`Template file "Templates/Gone" not found.`,
		`Created note: "New.md"`,
	}, h.notices.Messages())
}

func TestRunCreateWithDate(t *testing.T) {
	h := newHarness(t, map[string]string{"tpl-2023-12-24.md": "{{date:dddd}} at {{time}}"})

	chosen := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)
	ctx := WithDate(context.Background(), chosen)
	def := Definition{ID: "d", Name: "D", Kind: KindCreateWithDate, Path: "Journal/{{date}}", TemplatePath: "tpl-{{date}}"}
	require.NoError(t, h.runner.Run(ctx, def))

	// Date tokens follow the chosen day; time tokens follow the clock.
	assert.Equal(t, "Sunday at 14:05", h.content(t, "Journal/2023-12-24.md"))
}

func TestRunInsert(t *testing.T) {
	h := newHarness(t, map[string]string{"a.md": "start\n"})
	ctx := context.Background()
	def := Definition{ID: "i", Name: "Stamp", Kind: KindInsert, Snippet: "{{date}} {{time:hh:mm A}}"}

	require.NoError(t, h.runner.Run(ctx, def))
	assert.Equal(t, []string{"No active editor found to insert snippet."}, h.notices.Messages())

	_, err := h.ws.Open(ctx, "a.md", workspace.PlacementCurrent)
	require.NoError(t, err)
	require.NoError(t, h.runner.Run(ctx, def))
	assert.Equal(t, "start\n2024-03-15 02:05 PM", h.content(t, "a.md"))
}

func TestRunUnknownKind(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Run(context.Background(), Definition{ID: "u", Name: "U", Kind: "teleport"}))
	assert.Equal(t, []string{"Unknown command type: teleport"}, h.notices.Messages())
}

type failingOpener struct{}

func (failingOpener) Open(context.Context, string, workspace.Placement) (workspace.Tab, error) {
	return workspace.Tab{}, errors.New("host exploded")
}

type panickingEditor struct{}

func (panickingEditor) ReplaceSelection(context.Context, string) error { panic("editor gone") }

func TestRunCollaboratorFailuresAreContained(t *testing.T) {
	h := newHarness(t, map[string]string{"a.md": "x"})
	r := NewRunner(h.vault, failingOpener{}, panickingEditor{}, nil,
		WithNotifier(h.notices),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithJournal(h.journal),
	)
	ctx := context.Background()

	err := r.Run(ctx, Definition{ID: "o", Name: "Open A", Kind: KindOpen, Path: "a"})
	require.Error(t, err)
	assert.True(t, notify.AlreadyReported(err))

	err = r.Run(ctx, Definition{ID: "i", Name: "Insert", Kind: KindInsert, Snippet: "x"})
	require.Error(t, err)

	assert.Equal(t, []string{
		"Error executing command Open A: open a.md: host exploded",
		"Error executing command Insert: panic: editor gone",
	}, h.notices.Messages())

	require.Len(t, h.journal.runs, 2)
	assert.Equal(t, history.StatusFailed, h.journal.runs[0].Status)
	assert.Equal(t, "custom-cmd-o", h.journal.runs[0].ActionID)
}

func TestRunSequence_DefaultCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.manager.Rebuild(Defaults())

	require.NoError(t, h.reg.Invoke(context.Background(), ActionID("sequence-today")))

	assert.Equal(t, "Hello! It's 2024-03-15 at 14:05. Have a lovely day!", h.content(t, "Daily/2024-03-15-Friday.md"))
	assert.Equal(t, []string{`Created note: "Daily/2024-03-15-Friday.md"`}, h.notices.Messages())
	assert.Equal(t, 2, h.sleeps)

	require.Len(t, h.journal.runs, 3)
	assert.Equal(t, "custom-cmd-create-today", h.journal.runs[0].ActionID)
	assert.Equal(t, "Sequence today", h.journal.runs[2].Name)
}

func TestRunSequence_CycleIsReportedAndOuterContinues(t *testing.T) {
	h := newHarness(t, map[string]string{"a.md": ""})
	h.manager.Rebuild(Collection{
		{ID: "loop", Name: "Loop", Kind: KindSequence, ReferencedNames: "Loop, Open A"},
		{ID: "open-a", Name: "Open A", Kind: KindOpen, Path: "a"},
	})

	err := h.reg.Invoke(context.Background(), ActionID("loop"))
	require.NoError(t, err)

	msgs := h.notices.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Error executing command Loop:")
	assert.Contains(t, msgs[0], "loop -> loop")
	assert.Equal(t, []string{"a.md@current"}, h.opened)
}

func TestRunSequence_EmptyNames(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.runner.Run(context.Background(), Definition{ID: "s", Name: "S", Kind: KindSequence}))
	assert.Equal(t, []string{"No command names provided for sequence."}, h.notices.Messages())
}
