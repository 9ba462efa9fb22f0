package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-real-auth    use the real authentication backend
//	-debug        verbose logging
//	-u string     API base URL
//	-t int        request timeout in seconds
//	-i int        online check interval in seconds
//	-d string     data directory
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c) do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-t", "-i", "-d"}, "-real-auth", "-debug")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.BoolVar(&cfg.RealAuth, "real-auth", cfg.RealAuth, "use the real authentication backend")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// second-granularity flags only win when given, so "1500ms" from JSON survives
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}
