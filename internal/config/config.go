package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	YouTrack struct {
		URL   string // e.g., https://example.youtrack.cloud
		Token string // permanent token, perm:...
	}
	Toggl struct {
		APIToken    string
		WorkspaceID int64
		BaseURL     string // default: https://api.track.toggl.com
		UserAgent   string // required by the reports API; default: youtrack-time-importer
	}
	MySQL struct {
		DSN string // optional; enables the import ledger
	}
	HTTP struct {
		RetryMaxElapsed time.Duration // default: 30s
	}
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.YouTrack.URL = os.Getenv("YOUTRACK_URL")
	if cfg.YouTrack.URL == "" {
		return cfg, errors.New("YOUTRACK_URL is required")
	}
	cfg.YouTrack.Token = os.Getenv("YOUTRACK_TOKEN")
	if cfg.YouTrack.Token == "" {
		return cfg, errors.New("YOUTRACK_TOKEN is required")
	}

	cfg.Toggl.APIToken = os.Getenv("TOGGL_API_TOKEN")
	if ws := os.Getenv("TOGGL_WORKSPACE_ID"); ws != "" {
		if v, err := strconv.ParseInt(ws, 10, 64); err == nil {
			cfg.Toggl.WorkspaceID = v
		} else {
			return cfg, errors.New("TOGGL_WORKSPACE_ID must be an integer")
		}
	}
	cfg.Toggl.BaseURL = os.Getenv("TOGGL_BASE_URL")
	if cfg.Toggl.BaseURL == "" {
		cfg.Toggl.BaseURL = "https://api.track.toggl.com"
	}
	cfg.Toggl.UserAgent = os.Getenv("TOGGL_USER_AGENT")
	if cfg.Toggl.UserAgent == "" {
		cfg.Toggl.UserAgent = "youtrack-time-importer"
	}

	cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")

	cfg.HTTP.RetryMaxElapsed = 30 * time.Second
	if v := os.Getenv("HTTP_RETRY_MAX_ELAPSED"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, errors.New("HTTP_RETRY_MAX_ELAPSED must be a positive duration")
		}
		cfg.HTTP.RetryMaxElapsed = d
	}

	return cfg, nil
}

// RequireToggl reports whether the Toggl API settings needed for an API
// import are present.
func (c Config) RequireToggl() error {
	if c.Toggl.APIToken == "" {
		return errors.New("TOGGL_API_TOKEN is required for the toggl-api source")
	}
	if c.Toggl.WorkspaceID == 0 {
		return errors.New("TOGGL_WORKSPACE_ID is required for the toggl-api source")
	}
	return nil
}
