package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ImportDir string `toml:"import_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// AcoustID contains configuration for the AcoustID lookup service.
type AcoustID struct {
	APIKey   string  `toml:"api_key"`
	BaseURL  string  `toml:"base_url"`
	MinScore float64 `toml:"min_score"`
}

// MusicBrainz contains configuration for the MusicBrainz web service.
type MusicBrainz struct {
	BaseURL    string `toml:"base_url"`
	UserAgent  string `toml:"user_agent"`
	MaxRetries int    `toml:"max_retries"`
}

// SSH contains configuration for remote listing and transfers.
type SSH struct {
	ConfigPath     string `toml:"config_path"`
	ConnectTimeout int    `toml:"connect_timeout"`
	ListTimeout    int    `toml:"list_timeout"`
	ListLimit      int    `toml:"list_limit"`
	CopyTimeout    int    `toml:"copy_timeout"`
}

// Tools contains the external binaries dropzone shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FPCalc  string `toml:"fpcalc"`
	SSH     string `toml:"ssh"`
	SCP     string `toml:"scp"`
	SSHPass string `toml:"sshpass"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Imports        bool   `toml:"imports"`
	Transfers      bool   `toml:"transfers"`
	Errors         bool   `toml:"errors"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dropzone.
//
// Configuration sections by subsystem:
//   - Paths: import/log/state directories
//   - AcoustID: audio fingerprint lookup service
//   - MusicBrainz: recording metadata web service
//   - SSH: remote listing and transfer settings
//   - Tools: external binary names/paths
//   - Notifications: ntfy push notification settings
//   - History: run history database
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	AcoustID      AcoustID      `toml:"acoustid"`
	MusicBrainz   MusicBrainz   `toml:"musicbrainz"`
	SSH           SSH           `toml:"ssh"`
	Tools         Tools         `toml:"tools"`
	Notifications Notifications `toml:"notifications"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dropzone/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dropzone.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories dropzone writes to. ImportDir is
// created on a best-effort basis so commands other than import still run when
// the music library volume is unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ImportDir) != "" {
		_ = os.MkdirAll(c.Paths.ImportDir, 0o755)
	}
	return nil
}

// LockPath returns the path of the lock file serializing import runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "import.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %q: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
