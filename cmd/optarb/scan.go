package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"optionarb/internal/config"
	"optionarb/internal/dataloader"
	"optionarb/internal/logging"
	"optionarb/internal/models"
	"optionarb/internal/scanner"
	"optionarb/pkg/format"
)

func newScanCmd(app *App) *cobra.Command {
	var sym1, sym2, right, rankBy string
	var qtyRatio, minVolume int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a trading day's option chain for arbitrage pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)

			dates, err := dataloader.ListDates(app.Config.DataDir)
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				return fmt.Errorf("no trading dates found under %s", app.Config.DataDir)
			}
			date := dates[0]

			underlying, err := dataloader.LoadUnderlying(app.Config.DataDir, date)
			if err != nil {
				return err
			}
			trades, err := dataloader.LoadOptionTrades(app.Config.DataDir, date)
			if err != nil {
				return err
			}
			quotes, err := dataloader.LoadOptionQuotes(app.Config.DataDir, date)
			if err != nil {
				return err
			}

			sym1Bars, sym2Bars := dataloader.GetSymbolFrames(underlying, sym1, sym2)

			if qtyRatio == 0 {
				qtyRatio = config.QtyRatioFor(sym2)
			}
			if minVolume == 0 {
				minVolume = config.DefaultMinVolume
			}

			req := scanner.Request{
				Trades:         trades,
				Quotes:         quotes,
				Sym1Underlying: sym1Bars,
				Sym2Underlying: sym2Bars,
				Sym1:           sym1,
				Sym2:           sym2,
				QtyRatio:       qtyRatio,
				Right:          models.Right(right),
				MinVolume:      minVolume,
			}

			logging.LogScanStart(app.Logger, sym1, sym2, right, countStrikes(trades, quotes, sym1, models.Right(right)))

			start := time.Now()
			result, err := scanner.Scan(context.Background(), req, config.DefaultMinVolume)
			logging.LogScanComplete(app.Logger, len(result.Results), result.Partial, time.Since(start))
			if err != nil {
				return err
			}
			if result.Partial {
				out.Warning("scan cancelled before completion")
				return nil
			}

			view := result.BySafety
			switch rankBy {
			case "profit":
				view = result.ByProfit
			case "risk_reward":
				view = result.ByRiskReward
			}

			if out.IsJSON() {
				return out.JSON(view)
			}

			out.Bold("%s/%s pairs on %s (ranked by %s)", sym1, sym2, date, rankBy)
			for _, r := range view {
				out.Printf("  %.0f/%.0f  credit=%s  worst=%s  rr=%s  liquidity=%v\n",
					r.Sym1Strike, r.Sym2Strike, format.USD(r.CreditAtMax), format.PnL(r.BestWorstPnL), format.RiskReward(r.RiskReward()), r.LiquidityOK)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sym1, "sym1", "SPY", "first symbol")
	cmd.Flags().StringVar(&sym2, "sym2", "SPX", "second symbol")
	cmd.Flags().StringVar(&right, "right", "C", "option right: C or P")
	cmd.Flags().StringVar(&rankBy, "rank-by", "safety", "safety, profit, or risk_reward")
	cmd.Flags().IntVar(&qtyRatio, "qty-ratio", 0, "override the symbol pair's quantity ratio")
	cmd.Flags().IntVar(&minVolume, "min-volume", 0, "override the minimum per-leg daily volume")

	return cmd
}

// countStrikes counts the distinct strikes quoted or traded for symbol at
// right, a cheap pre-scan candidate estimate for LogScanStart.
func countStrikes(trades []models.OptionBar, quotes []models.OptionQuoteBar, symbol string, right models.Right) int {
	seen := map[float64]bool{}
	for _, t := range trades {
		if t.Symbol == symbol && t.Right == right {
			seen[t.Strike] = true
		}
	}
	for _, q := range quotes {
		if q.Symbol == symbol && q.Right == right {
			seen[q.Strike] = true
		}
	}
	return len(seen)
}
