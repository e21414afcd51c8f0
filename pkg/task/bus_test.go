package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishesMutations(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(NewMemStore())
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	created, err := bus.Create(ctx, Draft{Title: "A"})
	require.NoError(t, err)
	title := "B"
	_, err = bus.Update(ctx, created.ID, Patch{Title: &title})
	require.NoError(t, err)
	_, err = bus.Toggle(ctx, created.ID)
	require.NoError(t, err)
	_, err = bus.Delete(ctx, created.ID)
	require.NoError(t, err)

	var kinds []ChangeKind
	for i := 0; i < 4; i++ {
		c := <-ch
		assert.Equal(t, created.ID, c.Task.ID)
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []ChangeKind{Created, Updated, Toggled, Deleted}, kinds)
}

func TestBusSkipsFailedMutations(t *testing.T) {
	bus := NewBus(NewMemStore())
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	_, err := bus.Toggle(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, ch, 0)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(NewMemStore())
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	for i := 0; i < cap(ch)+10; i++ {
		_, err := bus.Create(ctx, Draft{Title: "t"})
		require.NoError(t, err)
	}
	assert.Len(t, ch, cap(ch))

	// reads pass through to the wrapped store
	list, err := bus.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, cap(ch)+10)
}
