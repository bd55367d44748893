// Package export renders the analytical core's results as the stable JSON
// snapshot envelopes every user-visible view emits, per spec.md §6(g).
package export

import (
	"encoding/json"
	"time"

	"optionarb/internal/models"
	"optionarb/internal/pnl"
)

// LegPrice is one leg's input/terminal price pair for the snapshot.
type LegPrice struct {
	Symbol   string  `json:"symbol"`
	Strike   float64 `json:"strike"`
	Right    string  `json:"right"`
	Action   string  `json:"action"`
	Quantity int     `json:"quantity"`
	Entry    float64 `json:"entry_price"`
	Terminal float64 `json:"terminal_price,omitempty"`
}

// BestWorstBlock mirrors spec.md's `best_worst_case.*` field names.
type BestWorstBlock struct {
	NetPnL        float64 `json:"net_pnl"`
	Sym1Price     float64 `json:"sym1_price"`
	Sym2Price     float64 `json:"sym2_price"`
	BasisDriftPct float64 `json:"basis_drift_pct"`
}

// ActualOutcome compares a realized result against the best-case scenario.
type ActualOutcome struct {
	NetPnL          float64 `json:"net_pnl"`
	PctOfBestCase   float64 `json:"pct_of_best_case"`
}

// Snapshot is the stable, machine-readable envelope of spec.md §6(g).
type Snapshot struct {
	Date          string          `json:"date"`
	EntryTimeLabel string         `json:"entry_time_label"`
	Sym1          string          `json:"sym1"`
	Sym2          string          `json:"sym2"`
	StrategyType  string          `json:"strategy_type"`
	Sym1Strike    float64         `json:"sym1_strike"`
	Sym2Strike    float64         `json:"sym2_strike"`
	Legs          []LegPrice      `json:"legs"`
	Credit        float64         `json:"credit"`
	EstimatedMargin float64       `json:"estimated_margin"`
	BestCase      BestWorstBlock  `json:"best_case"`
	BestWorstCase BestWorstBlock  `json:"best_worst_case"`
	ActualOutcome *ActualOutcome  `json:"actual_outcome,omitempty"`
}

// BuildSnapshot assembles a Snapshot from a built Position and its grid
// search result. terminal is an optional per-leg terminal price (indexed
// the same as pos.Legs); pass nil when no terminal prices are yet known.
func BuildSnapshot(date time.Time, entryTimeLabel string, cfg models.StrategyConfig, sym1Strike, sym2Strike float64, pos models.Position, best, worst pnl.Scenario, terminal []float64) Snapshot {
	legs := make([]LegPrice, len(pos.Legs))
	for i, l := range pos.Legs {
		lp := LegPrice{
			Symbol:   l.Symbol,
			Strike:   l.Strike,
			Right:    string(l.Right),
			Action:   string(l.Action),
			Quantity: l.Quantity,
			Entry:    l.EntryPrice,
		}
		if terminal != nil && i < len(terminal) {
			lp.Terminal = terminal[i]
		}
		legs[i] = lp
	}

	return Snapshot{
		Date:            date.Format("2006-01-02"),
		EntryTimeLabel:  entryTimeLabel,
		Sym1:            cfg.Sym1,
		Sym2:            cfg.Sym2,
		StrategyType:    string(cfg.StrategyType),
		Sym1Strike:      sym1Strike,
		Sym2Strike:      sym2Strike,
		Legs:            legs,
		Credit:          pos.TotalCredit,
		EstimatedMargin: pos.EstimatedMargin,
		BestCase: BestWorstBlock{
			NetPnL:        best.NetPnL,
			Sym1Price:     best.Sym1Price,
			Sym2Price:     best.Sym2Price,
			BasisDriftPct: best.BasisDriftPct,
		},
		BestWorstCase: BestWorstBlock{
			NetPnL:        worst.NetPnL,
			Sym1Price:     worst.Sym1Price,
			Sym2Price:     worst.Sym2Price,
			BasisDriftPct: worst.BasisDriftPct,
		},
	}
}

// WithActualOutcome attaches a realized P&L comparison against the best
// case, computing pct_of_best_case defensively (0 when best case is 0).
func (s Snapshot) WithActualOutcome(actualPnL float64) Snapshot {
	pct := 0.0
	if s.BestCase.NetPnL != 0 {
		pct = actualPnL / s.BestCase.NetPnL * 100
	}
	s.ActualOutcome = &ActualOutcome{NetPnL: actualPnL, PctOfBestCase: pct}
	return s
}

// Marshal renders the snapshot as indented JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
