package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagInput       = flag.String("input", "", "Directory containing .obj files")
	flagOutput      = flag.String("output", "", "Directory for generated arrays")
	flagFile        = flag.String("file", "", "Convert only this file from the input directory")
	flagWorkers     = flag.Int("workers", 0, "Number of files converted concurrently")
	flagEncoding    = flag.String("encoding", "", "Character encoding of OBJ files (e.g. windows-1252)")
	flagLogFile     = flag.String("log-file", "", "Also write logs to this file")
	flagInfo        = flag.Bool("info", false, "Print parse summaries without writing outputs")
	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path and exit")
	flagSaveConfig  = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// InfoOnly reports whether --info was given.
func InfoOnly() bool {
	return *flagInfo
}

// WriteConfigPath returns the --write-config destination, or "".
func WriteConfigPath() string {
	return *flagWriteConfig
}

// SaveConfigRequested reports whether --save-config was given.
func SaveConfigRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagInput != "" {
		cfg.Paths.InputDir = *flagInput
	}
	if *flagOutput != "" {
		cfg.Paths.OutputDir = *flagOutput
	}
	if *flagFile != "" {
		cfg.Paths.File = *flagFile
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagEncoding != "" {
		cfg.Source.Encoding = *flagEncoding
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
