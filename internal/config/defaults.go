package config

const (
	defaultImportDir          = "~/Music/Music/Media.localized/Automatically Add to Music.localized"
	defaultLogDir             = "~/.local/share/dropzone/logs"
	defaultStateDir           = "~/.local/share/dropzone"
	defaultAcoustIDBaseURL    = "https://api.acoustid.org/v2"
	defaultAcoustIDMinScore   = 0.5
	defaultMusicBrainzBaseURL = "https://musicbrainz.org/ws/2"
	defaultMusicBrainzAgent   = "dropzone/1.0 (https://github.com/evan-kinney/dropzone)"
	defaultMusicBrainzRetries = 5
	defaultSSHConfigPath      = "~/.ssh/config"
	defaultConnectTimeout     = 5
	defaultListTimeout        = 10
	defaultListLimit          = 20
	defaultCopyTimeout        = 300
	defaultNotifyTimeout      = 10
	defaultHistoryPath        = "~/.local/share/dropzone/history.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImportDir: defaultImportDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		AcoustID: AcoustID{
			BaseURL:  defaultAcoustIDBaseURL,
			MinScore: defaultAcoustIDMinScore,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:    defaultMusicBrainzBaseURL,
			UserAgent:  defaultMusicBrainzAgent,
			MaxRetries: defaultMusicBrainzRetries,
		},
		SSH: SSH{
			ConfigPath:     defaultSSHConfigPath,
			ConnectTimeout: defaultConnectTimeout,
			ListTimeout:    defaultListTimeout,
			ListLimit:      defaultListLimit,
			CopyTimeout:    defaultCopyTimeout,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FPCalc:  "fpcalc",
			SSH:     "ssh",
			SCP:     "scp",
			SSHPass: "sshpass",
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Imports:        true,
			Transfers:      true,
			Errors:         true,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
