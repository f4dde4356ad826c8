package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagEpsilon = flag.Float64("epsilon", 0, "UV tolerance for both seam split and island search")
	flagLogFile = flag.String("log-file", "", "Also write JSON logs to this file")
	flagCharset = flag.String("name-charset", "", "Charset of OBJ object names (euc-kr, gbk, shift-jis, ...)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagEpsilon > 0 {
		cfg.Topology.SplitEpsilon = *flagEpsilon
		cfg.Topology.IslandEpsilon = *flagEpsilon
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagCharset != "" {
		cfg.Input.NameCharset = *flagCharset
	}
}
