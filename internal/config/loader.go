package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pageguard"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .pageguard configuration file.
// Every field is optional; unset fields leave the Config untouched.
type File struct {
	Timings TimingsFile `yaml:"timings,omitempty"`
	Panel   PanelFile   `yaml:"panel,omitempty"`
	Browser BrowserFile `yaml:"browser,omitempty"`
	Store   StoreFile   `yaml:"store,omitempty"`
	Audit   AuditFile   `yaml:"audit,omitempty"`
}

// TimingsFile holds the observer timing windows.
type TimingsFile struct {
	Input     time.Duration `yaml:"input,omitempty"`
	Position  time.Duration `yaml:"position,omitempty"`
	Discovery time.Duration `yaml:"discovery,omitempty"`
	BlurGrace time.Duration `yaml:"blurGrace,omitempty"`
}

// PanelFile holds summary panel settings.
type PanelFile struct {
	ReloadDelay time.Duration `yaml:"reloadDelay,omitempty"`
}

// BrowserFile holds browser settings.
type BrowserFile struct {
	// Headless is a pointer so that an explicit false is distinguishable
	// from an absent key.
	Headless        *bool         `yaml:"headless,omitempty"`
	Path            string        `yaml:"path,omitempty"`
	NavigateTimeout time.Duration `yaml:"navigateTimeout,omitempty"`
}

// StoreFile holds snapshot store settings.
type StoreFile struct {
	Dir string `yaml:"dir,omitempty"`
}

// AuditFile holds audit command settings.
type AuditFile struct {
	BatchSize int `yaml:"batchSize,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every set field of the file into c.
func (cf *File) Apply(c *Config) {
	if cf.Timings.Input > 0 {
		c.InputThrottle = cf.Timings.Input
	}
	if cf.Timings.Position > 0 {
		c.PositionThrottle = cf.Timings.Position
	}
	if cf.Timings.Discovery > 0 {
		c.DiscoveryThrottle = cf.Timings.Discovery
	}
	if cf.Timings.BlurGrace > 0 {
		c.BlurGrace = cf.Timings.BlurGrace
	}
	if cf.Panel.ReloadDelay > 0 {
		c.ReloadDelay = cf.Panel.ReloadDelay
	}
	if cf.Browser.Headless != nil {
		c.Headless = *cf.Browser.Headless
	}
	if cf.Browser.Path != "" {
		c.BrowserPath = cf.Browser.Path
	}
	if cf.Browser.NavigateTimeout > 0 {
		c.NavigateTimeout = cf.Browser.NavigateTimeout
	}
	if cf.Store.Dir != "" {
		c.StoreDir = expandHome(cf.Store.Dir)
	}
	if cf.Audit.BatchSize > 0 {
		c.BatchSize = cf.Audit.BatchSize
	}
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pageguard in the current directory
// 3. Look for .pageguard in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
