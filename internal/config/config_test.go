package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	// empty variables count as unset
	for _, k := range []string{"TASKDESK_CONFIG", "PORT", "DB_DRIVER", "MONGODB_URI", "API_BASE_URL", "APP_ENV"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "mongo", cfg.DBDriver)
	assert.Equal(t, "mongodb://localhost:27017/taskmanager", cfg.MongoURI)
	assert.Equal(t, "http://localhost:5001/api", cfg.APIBaseURL)
	assert.False(t, cfg.IsDev())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\ndb_driver: memory\napp_env: development\n"), 0o644))
	t.Setenv("TASKDESK_CONFIG", path)
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.True(t, cfg.IsDev())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKDESK_CONFIG", "")
	t.Setenv("DB_DRIVER", "cassandra")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown db_driver")
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{DBDriver: "postgres"}).Validate())
	assert.NoError(t, (&Config{DBDriver: "postgres", DatabaseURL: "postgres://x"}).Validate())
	assert.Error(t, (&Config{DBDriver: "sqlite3"}).Validate())
	assert.NoError(t, (&Config{DBDriver: "memory"}).Validate())
}
