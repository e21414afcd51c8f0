package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/api"
	"taskdesk/pkg/task"
)

func newAPIClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(api.New(task.NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/api")
	require.NoError(t, err)
	return c
}

func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	c := newAPIClient(t)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", h.Status)

	list, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	due := time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)
	created, err := c.CreateTask(ctx, task.Draft{Title: "Buy milk", Priority: task.PriorityHigh, DueDate: &due})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := c.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.False(t, got.Completed)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))

	title := "Buy oat milk"
	updated, err := c.UpdateTask(ctx, created.ID, task.Patch{Title: &title, DueDate: task.NullTime{Set: true}})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Nil(t, updated.DueDate)

	toggled, err := c.ToggleCompletion(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	toggled, err = c.ToggleCompletion(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	require.NoError(t, c.DeleteTask(ctx, created.ID))
	_, err = c.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientNotFoundAndValidation(t *testing.T) {
	ctx := context.Background()
	c := newAPIClient(t)

	err := c.DeleteTask(ctx, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Task not found", apiErr.Message)

	_, err = c.ToggleCompletion(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.CreateTask(ctx, task.Draft{Title: ""})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClientRejectsUnknownResponseFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"1","title":"a","priority":"low","completed":false,"createdAt":"2026-01-01T00:00:00Z","__v":0}]`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.ListTasks(context.Background())
	assert.ErrorContains(t, err, "unknown field")
}

func TestClientOneRequestPerCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.ListTasks(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientReusesConnectionAfterDelete(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewUnstartedServer(api.New(task.NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			conns.Add(1)
		}
	}
	srv.Start()
	t.Cleanup(srv.Close)

	hc := &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: 1}}
	t.Cleanup(hc.CloseIdleConnections)
	c, err := New(srv.URL+"/api", WithHTTPClient(hc))
	require.NoError(t, err)

	ctx := context.Background()
	for range 3 {
		created, err := c.CreateTask(ctx, task.Draft{Title: "a"})
		require.NoError(t, err)
		require.NoError(t, c.DeleteTask(ctx, created.ID))
	}
	_, err = c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), conns.Load())
}

func TestClientDeleteAcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/abc", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	assert.NoError(t, c.DeleteTask(context.Background(), "abc"))
}

func TestClientMessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"Something went wrong!"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.GetTask(context.Background(), "x")
	assert.ErrorContains(t, err, "Something went wrong!")
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:5001")
	assert.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
