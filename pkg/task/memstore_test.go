package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	created, err := s.Create(ctx, Draft{Title: "Buy milk", Priority: PriorityHigh})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.Completed)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, PriorityHigh, got.Priority)
}

func TestMemStoreDefaults(t *testing.T) {
	created, err := NewMemStore().Create(context.Background(), Draft{Title: " A "})
	require.NoError(t, err)
	assert.Equal(t, "A", created.Title)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.Nil(t, created.DueDate)
}

func TestMemStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	var want []string
	for _, title := range []string{"one", "two", "three"} {
		tk, err := s.Create(ctx, Draft{Title: title})
		require.NoError(t, err)
		want = append([]string{tk.ID}, want...)
	}
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, ids(list))
}

func TestMemStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	created, err := s.Create(ctx, Draft{Title: "A"})
	require.NoError(t, err)

	due := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)
	desc := "details"
	updated, err := s.Update(ctx, created.ID, Patch{Description: &desc, DueDate: NullTime{Set: true, Time: &due}})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Title)
	assert.Equal(t, "details", updated.Description)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))
}

func TestMemStoreToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	created, err := s.Create(ctx, Draft{Title: "A"})
	require.NoError(t, err)

	once, err := s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)

	twice, err := s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Completed, twice.Completed)
}

func TestMemStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	created, err := s.Create(ctx, Draft{Title: "A"})
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = s.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	title := "x"

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, "missing", Patch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	created, err := s.Create(ctx, Draft{Title: "a", DueDate: &due})
	require.NoError(t, err)
	*created.DueDate = time.Time{}

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, due, *got.DueDate)
	*got.DueDate = time.Time{}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due, *list[0].DueDate)
	*list[0].DueDate = time.Time{}

	later := due.AddDate(0, 1, 0)
	updated, err := s.Update(ctx, created.ID, Patch{DueDate: NullTime{Set: true, Time: &later}})
	require.NoError(t, err)
	later = time.Time{}
	*updated.DueDate = time.Time{}

	got, err = s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 1, 0), *got.DueDate)
}
