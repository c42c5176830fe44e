package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariant(t *testing.T) {
	d := Definition{ID: "x", Name: "X", Kind: KindCreate, Path: "p", TemplatePath: "t", Snippet: "stale"}
	assert.Equal(t, Create{Path: "p", TemplatePath: "t"}, d.Variant())

	d.Kind = ""
	assert.Equal(t, Open{Path: "p"}, d.Variant(), "missing kind loads as open")

	d.Kind = "teleport"
	assert.Equal(t, Unknown{Kind: "teleport"}, d.Variant())
}

func TestWithKind_ClearsInactiveFields(t *testing.T) {
	d := Definition{ID: "x", Name: "X", Kind: KindCreate, Path: "Daily/{{date}}", TemplatePath: "tpl"}

	open := d.WithKind(KindOpen)
	assert.Equal(t, Definition{ID: "x", Name: "X", Kind: KindOpen, Path: "Daily/{{date}}"}, open)

	insert := d.WithKind(KindInsert)
	assert.Equal(t, Definition{ID: "x", Name: "X", Kind: KindInsert}, insert)

	dated := d.WithKind(KindCreateWithDate)
	assert.Equal(t, "tpl", dated.TemplatePath)
}

func TestNewID(t *testing.T) {
	taken := map[string]bool{"start-day": true, "start-day-2": true}
	isTaken := func(id string) bool { return taken[id] }

	assert.Equal(t, "open-home", NewID("Open Home", isTaken))
	assert.Equal(t, "start-day-3", NewID("Start day", isTaken))
	assert.Equal(t, "command", NewID("!!!", isTaken))
}

func TestDefinitionValidate(t *testing.T) {
	require.NoError(t, Definition{ID: "ok-id", Name: "Ok", Kind: KindSequence}.Validate())
	require.NoError(t, Definition{ID: "ok-id", Name: "Ok"}.Validate())

	assert.Error(t, Definition{ID: "Not A Slug", Name: "x"}.Validate())
	assert.Error(t, Definition{ID: "a", Name: ""}.Validate())
	assert.Error(t, Definition{ID: "a", Name: "x", Kind: "teleport"}.Validate())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "custom-cmd-start-day", ActionID("start-day"))
	assert.Equal(t, "Custom commands: Start day", DisplayName(DefaultLabel, "Start day"))
	assert.Equal(t, "Start day", DisplayName("", "Start day"))
}
