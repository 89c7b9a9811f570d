package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pageguard"

	// DefaultInputThrottle is the minimum spacing between strength
	// evaluations of one field while the user types.
	DefaultInputThrottle = 300 * time.Millisecond

	// DefaultPositionThrottle is the minimum spacing between advisory
	// repositioning passes.
	DefaultPositionThrottle = 100 * time.Millisecond

	// DefaultDiscoveryThrottle is the minimum spacing between field
	// re-discovery passes triggered by DOM mutations.
	DefaultDiscoveryThrottle = 1 * time.Second

	// DefaultBlurGrace is how long the advisory stays visible after its
	// field loses focus.
	DefaultBlurGrace = 200 * time.Millisecond

	// DefaultReloadDelay is how long the panel waits after a refresh before
	// reloading the stored snapshot.
	DefaultReloadDelay = 500 * time.Millisecond

	// DefaultNavigateTimeout bounds a single page load in the browser.
	DefaultNavigateTimeout = 60 * time.Second

	// DefaultBatchSize is the number of pages audited concurrently.
	DefaultBatchSize = 4
)

// Config holds all configuration options for pageguard.
// It is populated from defaults, the optional configuration file and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// InputThrottle is the per-field strength evaluation window.
	InputThrottle time.Duration

	// PositionThrottle is the advisory repositioning window.
	PositionThrottle time.Duration

	// DiscoveryThrottle is the mutation-triggered re-discovery window.
	DiscoveryThrottle time.Duration

	// BlurGrace delays hiding the advisory after blur.
	BlurGrace time.Duration

	// ReloadDelay is the wait between a panel refresh and the reload.
	ReloadDelay time.Duration

	// Headless hides the browser window. The watch command usually runs
	// with a visible window so the user can type into the page.
	Headless bool

	// BrowserPath is the Chromium binary. Empty lets chromedp find one.
	BrowserPath string

	// NavigateTimeout bounds each page load.
	NavigateTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output from text to JSON lines.
	LogJSON bool

	// StoreDir is the directory holding the snapshot database.
	// Defaults to the XDG data directory (~/.local/share/pageguard on Linux).
	StoreDir string

	// MemoryStore keeps snapshots in memory only. Nothing is written to
	// StoreDir.
	MemoryStore bool

	// BatchSize is the number of pages audited concurrently.
	BatchSize int

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty writes to stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .pageguard is searched in the current directory and then in
	// the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputThrottle:     DefaultInputThrottle,
		PositionThrottle:  DefaultPositionThrottle,
		DiscoveryThrottle: DefaultDiscoveryThrottle,
		BlurGrace:         DefaultBlurGrace,
		ReloadDelay:       DefaultReloadDelay,
		Headless:          true,
		NavigateTimeout:   DefaultNavigateTimeout,
		StoreDir:          XDGDataDir(),
		BatchSize:         DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for pageguard.
// On Linux: ~/.local/share/pageguard
// On macOS: ~/Library/Application Support/pageguard
// On Windows: %LOCALAPPDATA%\pageguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pageguard.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
func (c *Config) Validate() error {
	if c.InputThrottle <= 0 || c.PositionThrottle <= 0 || c.DiscoveryThrottle <= 0 {
		return ErrInvalidThrottle
	}

	if c.BlurGrace < 0 {
		return ErrInvalidBlurGrace
	}

	if c.ReloadDelay < 0 {
		return ErrInvalidReloadDelay
	}

	if c.NavigateTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if !c.MemoryStore && c.StoreDir == "" {
		return ErrNoStoreDir
	}

	return nil
}
