package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 3001, cfg.Server.Port)
	require.Equal(t, "data", cfg.Studio.DataDir)
	require.Equal(t, "incoming", cfg.Studio.WatchDir)
	require.Equal(t, "exports", cfg.Studio.OutputDir)
	require.Equal(t, 9, cfg.Studio.MaxPhotosPerSession)
	require.Equal(t, config.Duration(time.Hour), cfg.Studio.MaxSessionTime)
	require.Equal(t, config.Duration(time.Minute), cfg.Studio.OvertimePollInterval)
	require.Equal(t, config.Duration(2*time.Second), cfg.Watch.StabilityThreshold)
	require.Equal(t, config.Duration(100*time.Millisecond), cfg.Watch.PollInterval)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SNAPSTUDIO_SERVER_PORT", "8080")
	t.Setenv("SNAPSTUDIO_DATA_DIR", "/var/booth")
	t.Setenv("SNAPSTUDIO_MAX_PHOTOS", "12")
	t.Setenv("SNAPSTUDIO_MAX_SESSION_TIME", "30m")
	t.Setenv("SNAPSTUDIO_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "/var/booth", cfg.Studio.DataDir)
	require.Equal(t, 12, cfg.Studio.MaxPhotosPerSession)
	require.Equal(t, config.Duration(30*time.Minute), cfg.Studio.MaxSessionTime)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, filepath.Join("/var/booth", "history.db"), cfg.Studio.HistoryDBPath())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	file := `
server:
  host: 127.0.0.1
  port: 4000
studio:
  watch_dir: /mnt/camera
  max_photos_per_session: 6
  max_session_time: 45m
watch:
  stability_threshold: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(file), 0o644))
	t.Setenv("SNAPSTUDIO_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, "/mnt/camera", cfg.Studio.WatchDir)
	require.Equal(t, 6, cfg.Studio.MaxPhotosPerSession)
	require.Equal(t, config.Duration(45*time.Minute), cfg.Studio.MaxSessionTime)
	require.Equal(t, config.Duration(5*time.Second), cfg.Watch.StabilityThreshold)

	// Untouched keys keep their defaults.
	require.Equal(t, "data", cfg.Studio.DataDir)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o644))
	t.Setenv("SNAPSTUDIO_CONFIG_PATH", path)
	t.Setenv("SNAPSTUDIO_SERVER_PORT", "9999")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("SNAPSTUDIO_SERVER_PORT", "not-a-port")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("SNAPSTUDIO_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := config.Load()
	require.Error(t, err)
}
