package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "45m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Studio StudioConfig `yaml:"studio"`
	Watch  WatchConfig  `yaml:"watch"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StudioConfig struct {
	// DataDir holds session snapshots, bookings.json and the history db.
	DataDir string `yaml:"data_dir"`
	// WatchDir is where the capture device deposits photos.
	WatchDir string `yaml:"watch_dir"`
	// OutputDir receives curated exports.
	OutputDir string `yaml:"output_dir"`
	// PosesPath optionally points at a custom pose YAML file.
	PosesPath string `yaml:"poses_path"`

	MaxPhotosPerSession  int      `yaml:"max_photos_per_session"`
	MaxSessionTime       Duration `yaml:"max_session_time"`
	OvertimePollInterval Duration `yaml:"overtime_poll_interval"`
}

type WatchConfig struct {
	StabilityThreshold Duration `yaml:"stability_threshold"`
	PollInterval       Duration `yaml:"poll_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from .env, an optional YAML file, and environment
// variables, in increasing order of precedence.
func Load() (Config, error) {
	// .env is optional; ignore absence.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3001,
		},
		Studio: StudioConfig{
			DataDir:              "data",
			WatchDir:             "incoming",
			OutputDir:            "exports",
			MaxPhotosPerSession:  9,
			MaxSessionTime:       Duration(time.Hour),
			OvertimePollInterval: Duration(time.Minute),
		},
		Watch: WatchConfig{
			StabilityThreshold: Duration(2 * time.Second),
			PollInterval:       Duration(100 * time.Millisecond),
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SNAPSTUDIO_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SNAPSTUDIO_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SNAPSTUDIO_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SNAPSTUDIO_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dir := os.Getenv("SNAPSTUDIO_DATA_DIR"); dir != "" {
		cfg.Studio.DataDir = dir
	}
	if dir := os.Getenv("SNAPSTUDIO_WATCH_DIR"); dir != "" {
		cfg.Studio.WatchDir = dir
	}
	if dir := os.Getenv("SNAPSTUDIO_OUTPUT_DIR"); dir != "" {
		cfg.Studio.OutputDir = dir
	}
	if path := os.Getenv("SNAPSTUDIO_POSES_PATH"); path != "" {
		cfg.Studio.PosesPath = path
	}
	if maxStr := os.Getenv("SNAPSTUDIO_MAX_PHOTOS"); maxStr != "" {
		max, err := strconv.Atoi(maxStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SNAPSTUDIO_MAX_PHOTOS: %w", err)
		}
		cfg.Studio.MaxPhotosPerSession = max
	}
	if durStr := os.Getenv("SNAPSTUDIO_MAX_SESSION_TIME"); durStr != "" {
		dur, err := time.ParseDuration(durStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SNAPSTUDIO_MAX_SESSION_TIME: %w", err)
		}
		cfg.Studio.MaxSessionTime = Duration(dur)
	}
	if level := os.Getenv("SNAPSTUDIO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// HistoryDBPath is where the event journal lives inside the data directory.
func (c StudioConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
