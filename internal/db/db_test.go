package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/config"
	"taskdesk/pkg/task"
)

func TestOpenStoreMemory(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), &config.Config{DBDriver: "memory"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &task.MemStore{}, store)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &config.Config{DBDriver: "redis"})
	assert.ErrorContains(t, err, "unknown db driver")
}

// SQLite runs in-process, so the SQL store gets an end-to-end check here.
func TestOpenStoreSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DBDriver: "sqlite3", DatabaseURL: filepath.Join(t.TempDir(), "tasks.db")}
	store, closeFn, err := OpenStore(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()

	first, err := store.Create(ctx, task.Draft{Title: "first"})
	require.NoError(t, err)
	second, err := store.Create(ctx, task.Draft{Title: "Buy milk", Priority: task.PriorityHigh})
	require.NoError(t, err)

	got, err := store.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.False(t, got.Completed)
	assert.True(t, got.CreatedAt.Equal(second.CreatedAt))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	toggled, err := store.Toggle(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	title := "renamed"
	updated, err := store.Update(ctx, first.ID, task.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.True(t, updated.Completed)

	_, err = store.Delete(ctx, first.ID)
	require.NoError(t, err)
	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
	_, err = store.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}
