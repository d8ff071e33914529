package config

const (
	defaultDataDir   = "~/.local/share/lightbox"
	defaultLogDir    = "~/.local/share/lightbox/logs"
	defaultUndoDepth = 50
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			UndoDepth: defaultUndoDepth,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
