package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notecmd/internal/apperr"
)

func noop(context.Context) error { return nil }

func TestAddListOrder(t *testing.T) {
	r := New()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Add(Action{ID: id, Name: "Action " + id, Handler: noop}))
	}
	var ids []string
	for _, a := range r.List() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Equal(t, 3, r.Len())
}

func TestAddDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(Action{ID: "x", Name: "X", Handler: noop}))
	err := r.Add(Action{ID: "x", Name: "X again", Handler: noop})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestAddInvalid(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Add(Action{Name: "no id", Handler: noop}), apperr.ErrInvalidInput)
	assert.ErrorIs(t, r.Add(Action{ID: "h", Name: "no handler"}), apperr.ErrInvalidInput)
}

func TestRemove(t *testing.T) {
	r := New()
	_ = r.Add(Action{ID: "a", Name: "A", Handler: noop})
	_ = r.Add(Action{ID: "b", Name: "B", Handler: noop})

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	_, ok := r.Get("a")
	assert.False(t, ok)
	require.Len(t, r.List(), 1)
	assert.Equal(t, "b", r.List()[0].ID)
}

func TestInvoke(t *testing.T) {
	r := New()
	called := 0
	boom := errors.New("boom")
	_ = r.Add(Action{ID: "ok", Name: "OK", Handler: func(context.Context) error { called++; return nil }})
	_ = r.Add(Action{ID: "fail", Name: "Fail", Handler: func(context.Context) error { return boom }})

	require.NoError(t, r.Invoke(context.Background(), "ok"))
	assert.Equal(t, 1, called)
	assert.ErrorIs(t, r.Invoke(context.Background(), "fail"), boom)
	assert.ErrorIs(t, r.Invoke(context.Background(), "missing"), apperr.ErrNotFound)
}

func TestInvokeReentrant(t *testing.T) {
	r := New()
	inner := false
	_ = r.Add(Action{ID: "inner", Name: "Inner", Handler: func(context.Context) error { inner = true; return nil }})
	_ = r.Add(Action{ID: "outer", Name: "Outer", Handler: func(ctx context.Context) error {
		// Registering from inside a handler must not deadlock.
		if err := r.Add(Action{ID: "late", Name: "Late", Handler: noop}); err != nil {
			return err
		}
		return r.Invoke(ctx, "inner")
	}})

	require.NoError(t, r.Invoke(context.Background(), "outer"))
	assert.True(t, inner)
	_, ok := r.Get("late")
	assert.True(t, ok)
}
