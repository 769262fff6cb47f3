package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettingsFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pidboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
entry_file: /data/entry.yaml
known_stops_ttl: 2h
nats:
  url: nats://127.0.0.1:4222
`), 0o600))

	t.Setenv("PIDBOARD_LISTEN", ":9100")
	t.Setenv("PIDBOARD_VALIDATE_STOPS", "false")
	t.Setenv("PIDBOARD_QUEUE", "pidboard-sensors")

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", settings.Listen)
	assert.Equal(t, "/data/entry.yaml", settings.EntryFile)
	assert.Equal(t, 2*time.Hour, settings.KnownStopsTTL)
	assert.Equal(t, "nats://127.0.0.1:4222", settings.NATS.URL)
	assert.Equal(t, "pidboard.sensors", settings.NATS.Subject)
	assert.Equal(t, "pidboard-sensors", settings.Queue.Name)
	assert.False(t, settings.ValidateStops)
}

func TestLoadSettingsInvalid(t *testing.T) {
	t.Setenv("PIDBOARD_BASE_URL", "not a url")

	_, err := LoadSettings("")
	assert.Error(t, err)
}

func TestLoadSettingsInvalidEnvironment(t *testing.T) {
	t.Setenv("PIDBOARD_METRICS", "maybe")

	_, err := LoadSettings("")
	assert.Error(t, err)
}
