package pnl

import (
	"time"

	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"optionarb/internal/config"
	"optionarb/internal/models"
)

// Property: put-call parity holds on settlement intrinsics for any
// underlying price and strike.
func TestProperty_PutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	underlyingGen := gen.Float64Range(1, 10000)
	strikeGen := gen.Float64Range(1, 10000)

	properties.Property("settlement_call(u,k) - settlement_put(u,k) == u - k", prop.ForAll(
		func(u, k float64) bool {
			call := Settlement(u, k, models.Call)
			put := Settlement(u, k, models.Put)
			return call-put == u-k
		},
		underlyingGen,
		strikeGen,
	))

	properties.TestingRun(t)
}

// Property: BestWorstCase is deterministic — identical inputs produce
// bit-identical outputs across invocations.
func TestProperty_BestWorstCaseDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	entrySym1Gen := gen.Float64Range(100, 5000)
	creditGen := gen.Float64Range(-50, 50)

	properties.Property("BestWorstCase(x) == BestWorstCase(x) across invocations", prop.ForAll(
		func(entrySym1, sym1Price, sym2Price float64) bool {
			cfg, err := models.NewStrategyConfig("SPY", "SPX", 10, 5, models.CallsOnly, models.SellSym2BuySym1, models.SellSym1BuySym2)
			if err != nil {
				return false
			}
			entrySym2 := entrySym1 * 10

			pos := models.Position{
				Legs: []models.Leg{
					{Symbol: "SPX", Strike: entrySym2, Right: models.Call, Action: models.Sell, Quantity: 1, EntryPrice: sym2Price},
					{Symbol: "SPY", Strike: entrySym1, Right: models.Call, Action: models.Buy, Quantity: 10, EntryPrice: sym1Price},
				},
			}

			best1, worst1 := BestWorstCase(cfg, pos, entrySym1, entrySym2)
			best2, worst2 := BestWorstCase(cfg, pos, entrySym1, entrySym2)

			return best1.NetPnL == best2.NetPnL &&
				best1.Sym1Price == best2.Sym1Price &&
				worst1.NetPnL == worst2.NetPnL &&
				worst1.Sym1Price == worst2.Sym1Price
		},
		entrySym1Gen,
		creditGen,
		creditGen,
	))

	properties.TestingRun(t)
}

// Property: over an independent recomputation of the GridPricePoints *
// len(GridBasisDriftLevels) grid, best.NetPnL is always >= every scenario's
// NetPnL while worst.NetPnL is always <=. The scenario count checked is the
// recomputation's own; BestWorstCase does not report how many it evaluated.
func TestProperty_GridCoverageAndExtremes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	entrySym1Gen := gen.Float64Range(100, 5000)

	properties.Property("best is the max and worst is the min over the full grid", prop.ForAll(
		func(entrySym1 float64) bool {
			cfg, err := models.NewStrategyConfig("SPY", "SPX", 10, 5, models.CallsOnly, models.SellSym2BuySym1, models.SellSym1BuySym2)
			if err != nil {
				return false
			}
			entrySym2 := entrySym1 * 10

			pos := models.Position{
				Legs: []models.Leg{
					{Symbol: "SPX", Strike: entrySym2, Right: models.Call, Action: models.Sell, Quantity: 1, EntryPrice: 10.50},
					{Symbol: "SPY", Strike: entrySym1, Right: models.Call, Action: models.Buy, Quantity: 10, EntryPrice: 1.00},
				},
			}

			best, worst := BestWorstCase(cfg, pos, entrySym1, entrySym2)

			// Recompute the full grid independently and check best/worst are
			// its true extremes — exercising exactly
			// GridPricePoints*len(GridBasisDriftLevels) points.
			count := 0
			sym1Min := entrySym1 * (1 - config.GridPriceRangePct)
			sym1Max := entrySym1 * (1 + config.GridPriceRangePct)
			step := (sym1Max - sym1Min) / float64(config.GridPricePoints-1)
			entryRatio := entrySym2 / entrySym1

			maxPnL := best.NetPnL
			minPnL := worst.NetPnL

			for i := 0; i < config.GridPricePoints; i++ {
				s1 := sym1Min + float64(i)*step
				for _, drift := range config.GridBasisDriftLevels {
					s2 := s1 * entryRatio * (1 + drift)
					netPnL := PerLegPnL(pos.Legs[0], Settlement(s2, pos.Legs[0].Strike, models.Call)) +
						PerLegPnL(pos.Legs[1], Settlement(s1, pos.Legs[1].Strike, models.Call))
					count++
					if netPnL > maxPnL+1e-6 || netPnL < minPnL-1e-6 {
						return false
					}
				}
			}

			return count == config.GridPricePoints*len(config.GridBasisDriftLevels)
		},
		entrySym1Gen,
	))

	properties.TestingRun(t)
}
