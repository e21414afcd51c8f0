package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/api"
	"taskdesk/pkg/task"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DB_DRIVER", "memory")
	srv := httptest.NewServer(api.New(task.NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)), nil))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func run(t *testing.T, base string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", base}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func addTask(t *testing.T, base string, args ...string) task.Task {
	t.Helper()
	out, err := run(t, base, "", append([]string{"--json", "add"}, args...)...)
	require.NoError(t, err)
	var created task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	return created
}

func TestAddListToggleCounts(t *testing.T) {
	base := newTestServer(t)

	first := addTask(t, base, "--title", "Write report", "--priority", "high", "--due", "2026-11-01")
	assert.Equal(t, task.PriorityHigh, first.Priority)
	require.NotNil(t, first.DueDate)
	second := addTask(t, base, "--title", "  Ship it  ")
	assert.Equal(t, "Ship it", second.Title)
	assert.Equal(t, task.PriorityMedium, second.Priority)

	out, err := run(t, base, "", "toggle", first.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] "+first.ID)

	out, err = run(t, base, "", "--json", "list", "--filter", "active")
	require.NoError(t, err)
	var active []task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	out, err = run(t, base, "", "--json", "counts")
	require.NoError(t, err)
	var c task.Counts
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, task.Counts{Total: 2, Completed: 1, Active: 1}, c)
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	base := newTestServer(t)
	_, err := run(t, base, "", "add", "--title", "   ")
	var ve *task.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Title is required", ve.Fields["title"])
}

func TestUpdateSendsOnlyChangedFlags(t *testing.T) {
	base := newTestServer(t)
	created := addTask(t, base, "--title", "Old", "--description", "keep me", "--due", "2026-11-01")

	out, err := run(t, base, "", "--json", "update", created.ID, "--title", "New", "--due", "")
	require.NoError(t, err)
	var updated task.Task
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Nil(t, updated.DueDate)

	_, err = run(t, base, "", "update", created.ID)
	assert.ErrorContains(t, err, "nothing to update")
}

func TestDeleteAsksFirst(t *testing.T) {
	base := newTestServer(t)
	created := addTask(t, base, "--title", "Doomed")

	_, err := run(t, base, "n\n", "delete", created.ID)
	require.NoError(t, err)
	_, err = run(t, base, "", "get", created.ID)
	require.NoError(t, err)

	out, err := run(t, base, "y\n", "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+created.ID)

	_, err = run(t, base, "", "get", created.ID)
	assert.ErrorContains(t, err, "Task not found")
}

func TestHealthAndExport(t *testing.T) {
	base := newTestServer(t)
	addTask(t, base, "--title", "In the report")

	out, err := run(t, base, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: Server is running")

	path := filepath.Join(t.TempDir(), "tasks.pdf")
	_, err = run(t, base, "", "export", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
