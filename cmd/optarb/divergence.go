package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optionarb/internal/config"
	"optionarb/internal/dataloader"
	"optionarb/internal/normalization"
)

func newDivergenceCmd(app *App) *cobra.Command {
	var sym1, sym2 string
	var qtyRatio int

	cmd := &cobra.Command{
		Use:   "divergence",
		Short: "Show the normalized underlying divergence between sym1 and sym2",
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

			sym1Bars, sym2Bars := dataloader.GetSymbolFrames(underlying, sym1, sym2)
			if len(sym1Bars) == 0 || len(sym2Bars) == 0 {
				return fmt.Errorf("no underlying bars for %s/%s on %s", sym1, sym2, date)
			}

			if qtyRatio == 0 {
				qtyRatio = config.QtyRatioFor(sym2)
			}

			points := normalization.Divergence(sym1Bars, sym2Bars, qtyRatio)

			if out.IsJSON() {
				return out.JSON(points)
			}

			out.Bold("Divergence: %s vs %s x%d on %s", sym1, sym2, qtyRatio, date)
			for _, p := range points {
				out.Printf("  %s  %s=%+.3f%%  %s=%+.3f%%  gap=%+.3f%%  ($%.2f)\n",
					p.Timestamp.Format("15:04:05"), sym1, p.PctChangeSym1, sym2, p.PctChangeSym2, p.PctGap, p.DollarGap)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sym1, "sym1", "SPY", "first symbol")
	cmd.Flags().StringVar(&sym2, "sym2", "SPX", "second symbol")
	cmd.Flags().IntVar(&qtyRatio, "qty-ratio", 0, "override the symbol pair's quantity ratio")

	return cmd
}
