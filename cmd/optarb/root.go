// Command optarb is the CLI wrapper around the options-arbitrage analytical
// core. It is an external collaborator of the core, not the core itself: it
// owns process wiring (config, logging, broker, journal) and renders the
// core's typed results as text or JSON.
package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optionarb/internal/broker"
	"optionarb/internal/config"
	"optionarb/internal/journal"
)

const (
	version   = "0.1.0"
	buildDate = "2026-01-01"
)

// App holds the CLI's process-scope dependencies.
type App struct {
	Config  *config.ProcessConfig
	Logger  zerolog.Logger
	Broker  broker.Adapter
	Journal *journal.Store
}

// NewRootCmd builds the root cobra command, wiring App from cfg and logger.
func NewRootCmd(cfg *config.ProcessConfig, logger zerolog.Logger) *cobra.Command {
	app := &App{Config: cfg, Logger: logger}

	switch cfg.Broker.Mode {
	case "paper":
		app.Broker = broker.NewPaperBroker(nil, 0)
	default:
		app.Broker = broker.NewMockBroker(nil)
	}

	if store, err := journal.Open(cfg.JournalDB); err != nil {
		logger.Warn().Err(err).Msg("journal unavailable, trade history will not persist")
	} else {
		app.Journal = store
	}

	rootCmd := &cobra.Command{
		Use:   "optarb",
		Short: "Correlated index/ETF options-arbitrage scanner",
		Long: `optarb scans SPY/SPX/XSP option pairs for market-neutral credit
spreads, prices them under a deterministic grid search, and ranks
candidates by safety, profit, and risk/reward.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optionarb)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newPositionCmd(app))
	rootCmd.AddCommand(newPnLCmd(app))
	rootCmd.AddCommand(newDivergenceCmd(app))
	rootCmd.AddCommand(newAccountCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := NewOutput(cmd)
			if out.IsJSON() {
				out.JSON(map[string]string{"version": version, "build_date": buildDate})
				return
			}
			out.Printf("optarb v%s\n", version)
			out.Dim("build date: %s", buildDate)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect process configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the loaded configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if out.IsJSON() {
				return out.JSON(app.Config)
			}
			out.Bold("Data directory: %s", app.Config.DataDir)
			out.Printf("Journal DB:     %s\n", app.Config.JournalDB)
			out.Printf("Broker mode:    %s\n", app.Config.Broker.Mode)
			out.Printf("Log level:      %s\n", app.Config.Logging.Level)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			out := NewOutput(cmd)
			if out.IsJSON() {
				out.JSON(map[string]string{"path": config.DefaultConfigDir()})
				return
			}
			out.Println(config.DefaultConfigDir())
		},
	})
	return cmd
}
