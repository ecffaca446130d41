package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAcoustID(); err != nil {
		return err
	}
	if err := c.validateSSH(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAcoustID() error {
	if c.AcoustID.MinScore < 0 || c.AcoustID.MinScore > 1 {
		return errors.New("acoustid.min_score must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateSSH() error {
	if c.SSH.ListLimit > 100 {
		return fmt.Errorf("ssh.list_limit must be at most 100, got %d", c.SSH.ListLimit)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// RequireAcoustIDKey returns an error directing the user to configure an API
// key. Import needs one; the other commands do not, so this is checked at the
// command layer rather than in Validate.
func (c *Config) RequireAcoustIDKey() error {
	if c.AcoustID.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/dropzone/config.toml"
	}
	return fmt.Errorf("acoustid.api_key is required for import. Set ACOUSTID_API_KEY or edit %s (create with 'dropzone config init'); get a key at https://acoustid.org/api-key", defaultPath)
}
