package main

import (
	"time"

	"github.com/spf13/cobra"

	"optionarb/internal/logging"
)

// newAccountCmd reports the broker adapter's connected account state. It is
// the CLI's one always-available touchpoint to internal/broker: every other
// command works purely from CSV data and never needs a live connection.
func newAccountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the connected broker adapter's account summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			ctx := cmd.Context()

			start := time.Now()
			err := app.Broker.Connect(ctx)
			logging.LogBrokerCall(app.Logger, "connect", time.Since(start), err)
			if err != nil {
				return err
			}
			defer func() {
				dstart := time.Now()
				derr := app.Broker.Disconnect(ctx)
				logging.LogBrokerCall(app.Logger, "disconnect", time.Since(dstart), derr)
			}()

			start = time.Now()
			summary, err := app.Broker.AccountSummary(ctx)
			logging.LogBrokerCall(app.Logger, "account_summary", time.Since(start), err)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(summary)
			}

			out.Bold("Broker account (%s)", app.Config.Broker.Mode)
			out.Printf("  net liquidation: %.2f\n", summary.NetLiquidation)
			out.Printf("  available funds: %.2f\n", summary.AvailableFunds)
			out.Printf("  buying power:    %.2f\n", summary.BuyingPower)
			return nil
		},
	}
}
