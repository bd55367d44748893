// Package pnl computes settlement values and the best/worst-case grid
// search over entry-relative price and basis-drift scenarios.
package pnl

import (
	"math"

	"optionarb/internal/config"
	"optionarb/internal/models"
)

// Settlement returns an option's intrinsic value at expiration.
func Settlement(underlyingPrice, strike float64, right models.Right) float64 {
	if right == models.Call {
		return math.Max(0, underlyingPrice-strike)
	}
	return math.Max(0, strike-underlyingPrice)
}

// PerLegPnL returns a leg's cash P&L given the terminal (settlement
// intrinsic) price of its contract.
func PerLegPnL(leg models.Leg, terminalPrice float64) float64 {
	if leg.Action == models.Buy {
		return (terminalPrice - leg.EntryPrice) * float64(leg.Quantity) * 100
	}
	return (leg.EntryPrice - terminalPrice) * float64(leg.Quantity) * 100
}

// Scenario is one (sym1 price, basis drift) grid point's outcome.
type Scenario struct {
	Sym1Price     float64
	Sym2Price     float64
	BasisDriftPct float64 // as a percentage, e.g. 0.1 for +0.001 drift
	NetPnL        float64
	LegPnL        []float64 // parallel to position.Legs
	LegSettle     []float64 // parallel to position.Legs
}

// BestWorstCase runs the deterministic 150-scenario grid search of spec.md
// §4.7: GRID_PRICE_POINTS sym1 prices spanning +/- GRID_PRICE_RANGE_PCT
// around entrySym1, crossed with len(config.GridBasisDriftLevels) basis
// drift levels applied to the entry sym2/sym1 ratio. Inactive legs (a
// calls-only or puts-only position simply has fewer legs) contribute
// nothing since the sum only ranges over pos.Legs.
func BestWorstCase(cfg models.StrategyConfig, pos models.Position, entrySym1, entrySym2 float64) (best, worst Scenario) {
	entryRatio := entrySym2 / entrySym1

	sym1Min := entrySym1 * (1 - config.GridPriceRangePct)
	sym1Max := entrySym1 * (1 + config.GridPriceRangePct)
	step := (sym1Max - sym1Min) / float64(config.GridPricePoints-1)

	bestPnL := math.Inf(-1)
	worstPnL := math.Inf(1)

	for i := 0; i < config.GridPricePoints; i++ {
		s1 := sym1Min + float64(i)*step

		for _, drift := range config.GridBasisDriftLevels {
			s2 := s1 * entryRatio * (1 + drift)

			legPnL := make([]float64, len(pos.Legs))
			legSettle := make([]float64, len(pos.Legs))
			netPnL := 0.0
			for li, leg := range pos.Legs {
				u := underlyingFor(leg, cfg, s1, s2)
				settle := Settlement(u, leg.Strike, leg.Right)
				p := PerLegPnL(leg, settle)
				legSettle[li] = settle
				legPnL[li] = p
				netPnL += p
			}

			scenario := Scenario{
				Sym1Price:     s1,
				Sym2Price:     s2,
				BasisDriftPct: drift * 100,
				NetPnL:        netPnL,
				LegPnL:        legPnL,
				LegSettle:     legSettle,
			}

			if netPnL > bestPnL {
				bestPnL = netPnL
				best = scenario
			}
			if netPnL < worstPnL {
				worstPnL = netPnL
				worst = scenario
			}
		}
	}

	return best, worst
}

// underlyingFor resolves which of the scenario's two underlying prices
// applies to a given leg, by matching the leg's recorded symbol against the
// strategy's sym1/sym2 names.
func underlyingFor(leg models.Leg, cfg models.StrategyConfig, s1, s2 float64) float64 {
	if leg.Symbol == cfg.Sym2 {
		return s2
	}
	return s1
}
