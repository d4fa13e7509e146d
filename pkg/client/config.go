package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"teenpatti-client/pkg/utils"
)

// defaultSyncInterval is how often a session refreshes its snapshot when no
// push notification arrives first.
const defaultSyncInterval = 5 * time.Second

// Duration wraps time.Duration with YAML support ("5s", "500ms", ...).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ConfigOverrides carries optional CLI/runtime overrides for config values.
type ConfigOverrides struct {
	LedgerURL    string
	Identity     string
	LogFile      string
	DebugLevel   string
	HistoryDB    string
	SyncInterval time.Duration
}

// AppConfig is the unified configuration for a teen patti client.
type AppConfig struct {
	// Data directory.
	DataDir string `yaml:"-"`

	// LedgerURL is the URL of the ledger gateway endpoint.
	LedgerURL string `yaml:"ledgerUrl"`

	// Identity is this player's ledger identity (address).
	Identity string `yaml:"identity"`

	// Logging.
	LogFile    string `yaml:"logFile"`
	DebugLevel string `yaml:"debugLevel"`

	// HistoryDB is the path of the local session journal. Empty disables
	// journaling.
	HistoryDB string `yaml:"historyDb"`

	// SyncInterval is the periodic refresh interval.
	SyncInterval Duration `yaml:"syncInterval"`

	// Notifications must be set before constructing a client.
	Notifications *NotificationManager `yaml:"-"`

	// Clock drives the periodic refresh. Defaults to the wall clock;
	// tests inject a fake.
	Clock clockwork.Clock `yaml:"-"`
}

// LoadConfig loads configuration from <datadir>/<appName>.yaml, filling in
// defaults for anything the file does not set and applying overrides last.
// A missing config file is not an error.
func LoadConfig(appName, datadir string, ov ConfigOverrides) (*AppConfig, error) {
	if datadir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		datadir = filepath.Join(home, "."+appName)
	}
	if err := utils.EnsureDataDirExists(datadir); err != nil {
		return nil, err
	}

	cfg := &AppConfig{DataDir: datadir}

	path := filepath.Join(datadir, appName+".yaml")
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Overrides win over file values.
	if ov.LedgerURL != "" {
		cfg.LedgerURL = ov.LedgerURL
	}
	if ov.Identity != "" {
		cfg.Identity = ov.Identity
	}
	if ov.LogFile != "" {
		cfg.LogFile = ov.LogFile
	}
	if ov.DebugLevel != "" {
		cfg.DebugLevel = ov.DebugLevel
	}
	if ov.HistoryDB != "" {
		cfg.HistoryDB = ov.HistoryDB
	}
	if ov.SyncInterval != 0 {
		cfg.SyncInterval = Duration(ov.SyncInterval)
	}

	// Defaults.
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = Duration(defaultSyncInterval)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(datadir, "logs", appName+".log")
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(datadir, "history.db")
	}

	return cfg, nil
}

// Validate checks that all required configuration values are present.
func (cfg *AppConfig) Validate() error {
	var missing []string

	if cfg.Identity == "" {
		missing = append(missing, "Identity")
	}
	if cfg.Notifications == nil {
		missing = append(missing, "Notifications")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missing)
	}

	return nil
}
