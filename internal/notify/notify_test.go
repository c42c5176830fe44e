package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiFansOutAndCollects(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	direct := &Recorder{}

	ctx, collected := Collect(context.Background())
	m := Multi{Log{Logger: logger}, direct, nil}
	m.Notify(ctx, "hello")
	m.Notify(context.Background(), "not collected")

	assert.Equal(t, []string{"hello", "not collected"}, direct.Messages())
	assert.Equal(t, []string{"hello"}, collected.Messages())
	assert.True(t, strings.Contains(buf.String(), `"message":"hello"`))
}

func TestFunc(t *testing.T) {
	var got string
	Func(func(_ context.Context, msg string) { got = msg }).Notify(context.Background(), "x")
	assert.Equal(t, "x", got)
}

func TestFromContextEmpty(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestReported(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", Reported(base))

	assert.True(t, AlreadyReported(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.False(t, AlreadyReported(base))
	assert.Nil(t, Reported(nil))
}
