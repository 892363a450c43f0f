package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"forgectl/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "forgectl" // application name used for config directory

// Config holds user configuration for forgectl.
//
// Tokens are never stored here - they live in the OS credential store
// (see internal/credentials). The config only records which servers are
// known so the UI can enumerate them.
type Config struct {
	// Host is the default forge server, e.g. "gitea.example.org".
	Host string `yaml:"host"`

	// KnownServers lists every server the user has connected to.
	// Append-only, deduplicated by exact hostname.
	KnownServers []string `yaml:"known_servers"`

	// Connection behaviour
	AutoConnect  bool `yaml:"auto_connect"`
	FetchPRs     bool `yaml:"fetch_prs"`
	RefreshSecs  int  `yaml:"refresh_interval_seconds"`
	InsecureTLS  bool `yaml:"insecure_tls"`
	EnableLogs   bool `yaml:"enable_logs"`
	MaxRepos     int  `yaml:"max_repositories"`

	// Local clone management
	CloneEnabled bool     `yaml:"clone_enabled"`
	CloneRoot    string   `yaml:"clone_root"`
	AutoSync     bool     `yaml:"auto_sync"`
	AutoSyncSecs int      `yaml:"auto_sync_interval_seconds"`
	SyncExcludes []string `yaml:"sync_excludes"`

	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, it returns an error indicating first run is needed.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, first-time setup required")
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cloneRoot := filepath.Join(xdg.DataHome, APP_NAME, "repositories")

	return Config{
		KnownServers: []string{},
		FetchPRs:     true,
		RefreshSecs:  300,
		MaxRepos:     50,
		CloneEnabled: true,
		CloneRoot:    cloneRoot,
		AutoSyncSecs: 300,
		SyncExcludes: []string{},
		Version:      "1.0",
		InitTime:     0, // Set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AddServer records a server hostname in the known-servers list.
// The list is append-only and deduplicated by exact hostname match.
func (c *Config) AddServer(server string) bool {
	for _, s := range c.KnownServers {
		if s == server {
			return false
		}
	}
	c.KnownServers = append(c.KnownServers, server)
	return true
}

// RefreshInterval returns the configured refresh period for the dashboard.
func (c *Config) RefreshInterval() time.Duration {
	if c.RefreshSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.RefreshSecs) * time.Second
}
