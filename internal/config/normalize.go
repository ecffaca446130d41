package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeAcoustID(); err != nil {
		return err
	}
	c.normalizeMusicBrainz()
	if err := c.normalizeSSH(); err != nil {
		return err
	}
	c.normalizeTools()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ImportDir) == "" {
		c.Paths.ImportDir = defaultImportDir
	}
	if c.Paths.ImportDir, err = expandPath(c.Paths.ImportDir); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAcoustID() error {
	if c.AcoustID.APIKey == "" {
		if value, ok := os.LookupEnv("ACOUSTID_API_KEY"); ok {
			c.AcoustID.APIKey = value
		}
	}
	c.AcoustID.BaseURL = strings.TrimSpace(c.AcoustID.BaseURL)
	if c.AcoustID.BaseURL == "" {
		c.AcoustID.BaseURL = defaultAcoustIDBaseURL
	}
	if c.AcoustID.MinScore == 0 {
		c.AcoustID.MinScore = defaultAcoustIDMinScore
	}
	return nil
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimSpace(c.MusicBrainz.BaseURL)
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.UserAgent = strings.TrimSpace(c.MusicBrainz.UserAgent)
	if c.MusicBrainz.UserAgent == "" {
		c.MusicBrainz.UserAgent = defaultMusicBrainzAgent
	}
	if c.MusicBrainz.MaxRetries <= 0 {
		c.MusicBrainz.MaxRetries = defaultMusicBrainzRetries
	}
}

func (c *Config) normalizeSSH() error {
	var err error
	if strings.TrimSpace(c.SSH.ConfigPath) == "" {
		c.SSH.ConfigPath = defaultSSHConfigPath
	}
	if c.SSH.ConfigPath, err = expandPath(c.SSH.ConfigPath); err != nil {
		return fmt.Errorf("ssh.config_path: %w", err)
	}
	if c.SSH.ConnectTimeout <= 0 {
		c.SSH.ConnectTimeout = defaultConnectTimeout
	}
	if c.SSH.ListTimeout <= 0 {
		c.SSH.ListTimeout = defaultListTimeout
	}
	if c.SSH.ListLimit <= 0 {
		c.SSH.ListLimit = defaultListLimit
	}
	if c.SSH.CopyTimeout <= 0 {
		c.SSH.CopyTimeout = defaultCopyTimeout
	}
	return nil
}

func (c *Config) normalizeTools() {
	defaults := Default().Tools
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaults.FFmpeg
	}
	if strings.TrimSpace(c.Tools.FPCalc) == "" {
		c.Tools.FPCalc = defaults.FPCalc
	}
	if strings.TrimSpace(c.Tools.SSH) == "" {
		c.Tools.SSH = defaults.SSH
	}
	if strings.TrimSpace(c.Tools.SCP) == "" {
		c.Tools.SCP = defaults.SCP
	}
	if strings.TrimSpace(c.Tools.SSHPass) == "" {
		c.Tools.SSHPass = defaults.SSHPass
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}
