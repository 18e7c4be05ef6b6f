package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/imagekeeper/internal/flagx"
)

// Flags are the value-taking flags understood by the CLI; everything else
// on the command line is a command and its arguments.
var Flags = []string{"-a", "-s", "-t"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the imagekeeper API
//	-s string   directory holding the saved session token
//	-t int      request timeout in seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	fs.StringVar(&cfg.SessionDir, "s", cfg.SessionDir, "session directory")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
