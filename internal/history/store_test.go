package history_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessgif/internal/history"
)

func openStore(t *testing.T, retention int) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "nested", "history.db"), retention)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entry(id string, outcome history.Outcome) history.Entry {
	e := history.Entry{
		RequestID:  id,
		HandlerID:  "handler-1",
		DarkColor:  "#000000",
		LightColor: "#ffffff",
		Outcome:    outcome,
		Duration:   1500 * time.Millisecond,
	}
	e.DescribeNotation("1. e4 e5")
	if outcome == history.OutcomeSuccess {
		e.Bytes = 3
	} else {
		e.Message = "empty game"
	}
	return e
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t, 0)
	ctx := context.Background()

	_, err := store.Record(ctx, entry("req-1", history.OutcomeSuccess))
	require.NoError(t, err)
	_, err = store.Record(ctx, entry("req-2", history.OutcomeFailure))
	require.NoError(t, err)

	rows, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "req-2", rows[0].RequestID)
	assert.Equal(t, history.OutcomeFailure, rows[0].Outcome)
	assert.Equal(t, "empty game", rows[0].Message)
	assert.Equal(t, "req-1", rows[1].RequestID)
	assert.Equal(t, 3, rows[1].Bytes)
	assert.Equal(t, 1500*time.Millisecond, rows[1].Duration)
	assert.Equal(t, "1. e4 e5", rows[1].NotationPreview)
	assert.Len(t, rows[1].NotationSHA256, 64)
	assert.False(t, rows[1].CreatedAt.IsZero())

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.Stats{Total: 2, Successes: 1, Failures: 1}, stats)
}

func TestRecordPrunesBeyondRetention(t *testing.T) {
	store := openStore(t, 2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Record(ctx, entry(id, history.OutcomeSuccess))
		require.NoError(t, err)
	}
	rows, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].RequestID)
	assert.Equal(t, "b", rows[1].RequestID)
}

func TestRecordValidatesEntry(t *testing.T) {
	store := openStore(t, 0)
	_, err := store.Record(context.Background(), history.Entry{Outcome: history.OutcomeSuccess})
	assert.Error(t, err)
	_, err = store.Record(context.Background(), history.Entry{RequestID: "x", Outcome: "maybe"})
	assert.Error(t, err)
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path, 0)
	require.NoError(t, err)
	_, err = store.Record(context.Background(), entry("req-1", history.OutcomeSuccess))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := history.Open(path, 0)
	require.NoError(t, err)
	defer reopened.Close()
	rows, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, path, reopened.Path())
}

func TestDescribeNotationTruncatesPreview(t *testing.T) {
	var e history.Entry
	e.DescribeNotation(strings.Repeat("1. e4 e5 ", 30))
	assert.Equal(t, 80, len([]rune(e.NotationPreview)))
	assert.True(t, strings.HasSuffix(e.NotationPreview, "…"))

	e.DescribeNotation("1. d4\n\n  d5")
	assert.Equal(t, "1. d4 d5", e.NotationPreview)
}
