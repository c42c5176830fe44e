package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	runs := []Run{
		{ActionID: "custom-cmd-a", Name: "A", Kind: "open", Status: StatusOK, StartedAt: base, DurationMS: 12},
		{ActionID: "custom-cmd-b", Name: "B", Kind: "insert", Status: StatusFailed, Error: "no editor", StartedAt: base.Add(time.Minute)},
		{ActionID: "custom-cmd-a", Name: "A", Kind: "open", Status: StatusOK, StartedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		require.NoError(t, db.Record(ctx, r))
	}

	got, err := db.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].StartedAt.Equal(base.Add(2*time.Minute)), "newest first: got %v", got[0].StartedAt)
	assert.Equal(t, StatusFailed, got[1].Status)
	assert.Equal(t, "no editor", got[1].Error)
	assert.NotEmpty(t, got[0].ID, "generated id")
}

func TestByAction(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, db.Record(ctx, Run{ActionID: "x", Status: StatusOK, StartedAt: now, DurationMS: 30}))
	require.NoError(t, db.Record(ctx, Run{ActionID: "y", Status: StatusOK, StartedAt: now}))

	got, err := db.ByAction(ctx, "x", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].ActionID)
	assert.Equal(t, int64(30), got[0].DurationMS)
}

func TestRunJSON_DurationInMilliseconds(t *testing.T) {
	r := Run{ActionID: "a", Status: StatusOK, DurationMS: (1500 * time.Millisecond).Milliseconds()}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration_ms":1500`)
	assert.NotContains(t, string(data), `"duration_ms":1500000000`)

	var back Run
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, int64(1500), back.DurationMS)
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: 50, -1: 50, 10: 10, 1000: 50} {
		assert.Equal(t, want, clampLimit(in), "clampLimit(%d)", in)
	}
}

type captureJournal struct{ runs []Run }

func (c *captureJournal) Record(_ context.Context, r Run) error {
	c.runs = append(c.runs, r)
	return nil
}

func TestMulti_SharesID(t *testing.T) {
	db := testDB(t)
	capture := &captureJournal{}
	j := Multi{db, capture}

	require.NoError(t, j.Record(context.Background(), Run{ActionID: "a", Status: StatusOK, StartedAt: time.Now()}))
	got, err := db.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, capture.runs, 1)
	assert.Equal(t, got[0].ID, capture.runs[0].ID)
}
