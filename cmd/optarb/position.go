package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optionarb/internal/config"
	"optionarb/internal/dataloader"
	"optionarb/internal/export"
	"optionarb/internal/logging"
	"optionarb/internal/models"
	"optionarb/internal/pnl"
	"optionarb/internal/position"
	"optionarb/internal/pricing"
	"optionarb/pkg/format"
)

func newPositionCmd(app *App) *cobra.Command {
	var sym1, sym2, strategyType string
	var sym1Strike, sym2Strike float64
	var qtyRatio int

	cmd := &cobra.Command{
		Use:   "position",
		Short: "Build a position from the most recent trading day's prices",
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
			if len(sym1Bars) == 0 || len(sym2Bars) == 0 {
				return fmt.Errorf("no underlying bars for %s/%s on %s", sym1, sym2, date)
			}
			t := sym1Bars[len(sym1Bars)-1].Timestamp

			if qtyRatio == 0 {
				qtyRatio = config.QtyRatioFor(sym2)
			}

			st := models.CallsOnly
			if strategyType == "puts" {
				st = models.PutsOnly
			}

			cfg, err := models.NewStrategyConfig(sym1, sym2, qtyRatio, config.StrikeStepFor(sym2), st, models.SellSym2BuySym1, models.SellSym1BuySym2)
			if err != nil {
				return err
			}

			prices := map[string]*models.PriceQuote{}
			right := models.Call
			legSym1, legSym2 := position.LegSym1Call, position.LegSym2Call
			if st == models.PutsOnly {
				right = models.Put
				legSym1, legSym2 = position.LegSym1Put, position.LegSym2Put
			}

			q1, err := pricing.PriceAt(trades, quotes, sym1, sym1Strike, right, t)
			if err != nil {
				return err
			}
			q2, err := pricing.PriceAt(trades, quotes, sym2, sym2Strike, right, t)
			if err != nil {
				return err
			}
			prices[legSym1] = q1
			prices[legSym2] = q2

			if q1.Warning != "" {
				logging.LogPriceWarning(app.Logger, sym1, sym1Strike, string(right), string(q1.Warning))
			}
			if q2.Warning != "" {
				logging.LogPriceWarning(app.Logger, sym2, sym2Strike, string(right), string(q2.Warning))
			}
			if q1.IsStale {
				logging.LogStaleRefusal(app.Logger, sym1, sym1Strike, string(right))
			}
			if q2.IsStale {
				logging.LogStaleRefusal(app.Logger, sym2, sym2Strike, string(right))
			}

			entry := position.EntryUnderlying{Sym1: sym1Bars[len(sym1Bars)-1].Close, Sym2: sym2Bars[len(sym2Bars)-1].Close}

			pos, err := position.Build(cfg, prices, entry, sym1Strike, sym2Strike)
			if err != nil {
				out.Error("position build failed: %v", err)
				return err
			}

			logging.LogPosition(app.Logger, string(cfg.StrategyType), pos.TotalCredit, pos.EstimatedMargin)

			best, worst := pnl.BestWorstCase(cfg, pos, entry.Sym1, entry.Sym2)

			tradeDate, dateErr := parseDateID(date)
			if dateErr == nil {
				app.recordTrade(tradeDate, sym1, sym2, sym1Strike, sym2Strike, q1.Price, q2.Price, pos.TotalCredit, t)
			}

			if out.IsJSON() {
				snap := export.BuildSnapshot(tradeDate, t.Format("15:04:05"), cfg, sym1Strike, sym2Strike, pos, best, worst, nil)
				return out.JSON(snap)
			}

			out.Bold("Position: %s %s/%s %.0f/%.0f", strategyType, sym1, sym2, sym1Strike, sym2Strike)
			out.Printf("  credit:            %s\n", format.USD(pos.TotalCredit))
			out.Printf("  estimated margin:  %s\n", format.USD(pos.EstimatedMargin))
			out.Printf("  best case:         %s at sym1=%.2f sym2=%.2f\n", format.PnL(best.NetPnL), best.Sym1Price, best.Sym2Price)
			out.Printf("  worst case:        %s at sym1=%.2f sym2=%.2f\n", format.PnL(worst.NetPnL), worst.Sym1Price, worst.Sym2Price)
			if pos.MoneynessWarn {
				out.Warning("  moneyness mismatch exceeds the warning threshold")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sym1, "sym1", "SPY", "first symbol")
	cmd.Flags().StringVar(&sym2, "sym2", "SPX", "second symbol")
	cmd.Flags().StringVar(&strategyType, "type", "calls", "calls or puts")
	cmd.Flags().Float64Var(&sym1Strike, "sym1-strike", 0, "sym1 strike")
	cmd.Flags().Float64Var(&sym2Strike, "sym2-strike", 0, "sym2 strike")
	cmd.Flags().IntVar(&qtyRatio, "qty-ratio", 0, "override the symbol pair's quantity ratio")

	return cmd
}
