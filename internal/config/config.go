// Package config provides configuration management for ClipDeck.
// Values come from built-in defaults, an optional YAML file in the data
// directory, and environment variable overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultAPIBaseURL  = "http://localhost:8000"
	DefaultPreviewPort = 8790
	DefaultLogLevel    = "info"
	DefaultDataDir     = ".clipdeck"
	DefaultPlayerCmd   = "mpv"

	// Poll intervals
	DefaultStatusPollInterval = 2 * time.Second
	DefaultRenderPollInterval = 1 * time.Second

	// Environment variable names
	EnvAPIBaseURL  = "CLIPDECK_API_URL"
	EnvAPIToken    = "CLIPDECK_API_TOKEN"
	EnvPreviewPort = "CLIPDECK_PREVIEW_PORT"
	EnvLogLevel    = "CLIPDECK_LOG_LEVEL"
	EnvDataDir     = "CLIPDECK_DATA_DIR"
	EnvPlayerCmd   = "CLIPDECK_PLAYER"

	// Config and database filenames
	FileName   = "config.yaml"
	DBFilename = "clipdeck.db"
)

// Config defines the application configuration interface
type Config interface {
	APIBaseURL() string
	PreviewPort() int
	LogLevel() string
	DataDir() string
	DBPath() string
	MediaDir() string
	PlayerCmd() string
	StatusPollInterval() time.Duration
	RenderPollInterval() time.Duration
}

// fileConfig is the YAML shape of the optional config file. All fields
// are optional; zero values fall through to defaults.
type fileConfig struct {
	APIBaseURL   string `yaml:"api_base_url"`
	PreviewPort  int    `yaml:"preview_port"`
	LogLevel     string `yaml:"log_level"`
	PlayerCmd    string `yaml:"player"`
	StatusPollMS int    `yaml:"status_poll_ms"`
	RenderPollMS int    `yaml:"render_poll_ms"`
}

// EnvConfig resolves configuration from defaults, file, and environment
type EnvConfig struct {
	apiBaseURL  string
	previewPort int
	logLevel    string
	dataDir     string
	playerCmd   string
	statusPoll  time.Duration
	renderPoll  time.Duration
}

// New creates an EnvConfig: defaults, then the YAML file if present,
// then environment variable overrides.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		apiBaseURL:  DefaultAPIBaseURL,
		previewPort: DefaultPreviewPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(),
		playerCmd:   DefaultPlayerCmd,
		statusPoll:  DefaultStatusPollInterval,
		renderPoll:  DefaultRenderPollInterval,
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if err := cfg.loadFile(filepath.Join(cfg.dataDir, FileName)); err != nil {
		return nil, err
	}

	if u := os.Getenv(EnvAPIBaseURL); u != "" {
		cfg.apiBaseURL = u
	}

	if p := os.Getenv(EnvPreviewPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPreviewPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPreviewPort)
		}
		cfg.previewPort = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if pc := os.Getenv(EnvPlayerCmd); pc != "" {
		cfg.playerCmd = pc
	}

	return cfg, nil
}

func (c *EnvConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.APIBaseURL != "" {
		c.apiBaseURL = fc.APIBaseURL
	}
	if fc.PreviewPort != 0 {
		c.previewPort = fc.PreviewPort
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.PlayerCmd != "" {
		c.playerCmd = fc.PlayerCmd
	}
	if fc.StatusPollMS > 0 {
		c.statusPoll = time.Duration(fc.StatusPollMS) * time.Millisecond
	}
	if fc.RenderPollMS > 0 {
		c.renderPoll = time.Duration(fc.RenderPollMS) * time.Millisecond
	}

	return nil
}

// APIBaseURL returns the base URL of the remote pipeline service
func (c *EnvConfig) APIBaseURL() string {
	return c.apiBaseURL
}

// PreviewPort returns the localhost media preview server port
func (c *EnvConfig) PreviewPort() int {
	return c.previewPort
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// MediaDir returns the directory holding downloaded media files
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

// PlayerCmd returns the external player executable name
func (c *EnvConfig) PlayerCmd() string {
	return c.playerCmd
}

func (c *EnvConfig) StatusPollInterval() time.Duration {
	return c.statusPoll
}

func (c *EnvConfig) RenderPollInterval() time.Duration {
	return c.renderPoll
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
