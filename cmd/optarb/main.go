package main

import (
	"fmt"
	"os"

	"optionarb/internal/config"
	"optionarb/internal/logging"
)

func main() {
	configDir, _ := peekConfigFlag(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging)

	rootCmd := NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// peekConfigFlag scans raw args for --config before cobra parses flags,
// since config loading must happen before the root command is built.
func peekConfigFlag(args []string) (string, bool) {
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}
