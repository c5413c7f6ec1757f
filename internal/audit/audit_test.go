package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicmue/payment-engine/internal/account"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(id string) Run {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Run{
		ID:         id,
		InputPath:  "transactions.csv",
		Shards:     4,
		Processed:  100,
		Skipped:    2,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
}

func TestStore_RecordAndReadBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snaps := []account.Snapshot{
		{
			Client:    2,
			Available: decimal.RequireFromString("3.25"),
			Held:      decimal.RequireFromString("0"),
			Total:     decimal.RequireFromString("3.25"),
			Locked:    false,
		},
		{
			Client:    1,
			Available: decimal.RequireFromString("-10.5"),
			Held:      decimal.RequireFromString("42"),
			Total:     decimal.RequireFromString("31.5"),
			Locked:    true,
		},
	}
	require.NoError(t, store.RecordRun(ctx, testRun("run-1"), snaps))

	got, err := store.Snapshots(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by client id.
	assert.EqualValues(t, 1, got[0].Client)
	assert.True(t, got[0].Available.Equal(decimal.RequireFromString("-10.5")))
	assert.True(t, got[0].Held.Equal(decimal.RequireFromString("42")))
	assert.True(t, got[0].Locked)

	assert.EqualValues(t, 2, got[1].Client)
	assert.True(t, got[1].Total.Equal(decimal.RequireFromString("3.25")))
	assert.False(t, got[1].Locked)
}

func TestStore_DuplicateRunIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, testRun("run-1"), nil))
	assert.Error(t, store.RecordRun(ctx, testRun("run-1"), nil))
}

func TestStore_SeparateRunsKeptApart(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	one := []account.Snapshot{{Client: 1,
		Available: decimal.New(10, 0), Held: decimal.Zero, Total: decimal.New(10, 0)}}
	two := []account.Snapshot{{Client: 1,
		Available: decimal.New(20, 0), Held: decimal.Zero, Total: decimal.New(20, 0)}}

	require.NoError(t, store.RecordRun(ctx, testRun("run-1"), one))
	require.NoError(t, store.RecordRun(ctx, testRun("run-2"), two))

	got, err := store.Snapshots(ctx, "run-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Available.Equal(decimal.New(20, 0)))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordRun(context.Background(), testRun("run-1"), nil))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Error(t, reopened.RecordRun(context.Background(), testRun("run-1"), nil))
}
