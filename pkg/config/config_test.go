package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ATLAS_API_URL", "")
	t.Setenv("ATLAS_TIMEOUT", "")
	t.Setenv("ATLAS_LOG_LEVEL", "")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://atlas.example/api/v1\ntimeout: 5s\nlog_level: debug\n"), 0o600))

	t.Setenv("ATLAS_API_URL", "")
	t.Setenv("ATLAS_TIMEOUT", "10s")
	t.Setenv("ATLAS_LOG_LEVEL", "")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://atlas.example/api/v1", c.APIURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("ATLAS_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("ATLAS_TIMEOUT", "-1s")
	_, err = Load("")
	assert.Error(t, err)
}
