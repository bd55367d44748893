// Package position builds market-neutral credit positions from a strategy
// configuration and a set of leg prices.
package position

import (
	"fmt"
	"math"

	"optionarb/internal/config"
	"optionarb/internal/errkind"
	"optionarb/internal/models"
)

// Leg name keys into the prices map passed to Build.
const (
	LegSym1Call = "sym1_call"
	LegSym2Call = "sym2_call"
	LegSym1Put  = "sym1_put"
	LegSym2Put  = "sym2_put"
)

// EntryUnderlying is the pair of underlying prices at entry time, used for
// the moneyness-mismatch check.
type EntryUnderlying struct {
	Sym1 float64
	Sym2 float64
}

// Build constructs a Position from cfg, the resolved leg prices, and the
// entry-time underlying prices, per spec.md §4.6.
//
// prices must carry an entry for every leg cfg.StrategyType requires
// (sym1_call/sym2_call for calls, sym1_put/sym2_put for puts). A missing or
// stale leg price fails the whole construction with precondition_not_met,
// naming the offending leg — this is the sole gate preventing a tradable
// position from resting on an unexecutable price.
func Build(cfg models.StrategyConfig, prices map[string]*models.PriceQuote, entry EntryUnderlying, sym1Strike, sym2Strike float64) (models.Position, error) {
	if err := cfg.Validate(); err != nil {
		return models.Position{}, err
	}

	var legs []models.Leg
	var callCredit, putCredit float64

	if cfg.StrategyType == models.Full || cfg.StrategyType == models.CallsOnly {
		sym1Q, err := requireLeg(prices, LegSym1Call)
		if err != nil {
			return models.Position{}, err
		}
		sym2Q, err := requireLeg(prices, LegSym2Call)
		if err != nil {
			return models.Position{}, err
		}
		callLegs, credit := buildSpreadLegs(cfg.Sym1, cfg.Sym2, models.Call, cfg.CallDirection, cfg.QtyRatio, sym1Strike, sym2Strike, sym1Q.Price, sym2Q.Price)
		legs = append(legs, callLegs...)
		callCredit = credit
	}

	if cfg.StrategyType == models.Full || cfg.StrategyType == models.PutsOnly {
		sym1Q, err := requireLeg(prices, LegSym1Put)
		if err != nil {
			return models.Position{}, err
		}
		sym2Q, err := requireLeg(prices, LegSym2Put)
		if err != nil {
			return models.Position{}, err
		}
		putLegs, credit := buildSpreadLegs(cfg.Sym1, cfg.Sym2, models.Put, cfg.PutDirection, cfg.QtyRatio, sym1Strike, sym2Strike, sym1Q.Price, sym2Q.Price)
		legs = append(legs, putLegs...)
		putCredit = credit
	}

	totalCredit := callCredit + putCredit
	margin := estimateMargin(legs, callCredit, putCredit)

	moneynessWarn := false
	if entry.Sym1 != 0 && entry.Sym2 != 0 {
		pct1 := (sym1Strike - entry.Sym1) / entry.Sym1 * 100
		pct2 := (sym2Strike - entry.Sym2) / entry.Sym2 * 100
		if math.Abs(pct1-pct2) > config.MoneynessWarnThresholdPct {
			moneynessWarn = true
		}
	}

	return models.Position{
		StrategyType:    cfg.StrategyType,
		Legs:            legs,
		CallCredit:      callCredit,
		PutCredit:       putCredit,
		TotalCredit:     totalCredit,
		EstimatedMargin: margin,
		MoneynessWarn:   moneynessWarn,
	}, nil
}

func requireLeg(prices map[string]*models.PriceQuote, name string) (*models.PriceQuote, error) {
	q, ok := prices[name]
	if !ok || q == nil {
		return nil, errkind.PreconditionNotMet(fmt.Sprintf("leg %q has no price", name))
	}
	if q.IsStale {
		return nil, errkind.PreconditionNotMet(fmt.Sprintf("leg %q price is stale", name))
	}
	return q, nil
}

// buildSpreadLegs resolves sell/buy sides from direction and returns the two
// legs plus the spread's credit.
func buildSpreadLegs(sym1, sym2 string, right models.Right, direction models.Direction, qtyRatio int, sym1Strike, sym2Strike, sym1Price, sym2Price float64) ([]models.Leg, float64) {
	var sellSym string
	var sellStrike, sellPrice float64
	var sellQty int
	var buySym string
	var buyStrike, buyPrice float64
	var buyQty int

	switch direction {
	case models.SellSym2BuySym1:
		sellSym, sellStrike, sellPrice, sellQty = sym2, sym2Strike, sym2Price, 1
		buySym, buyStrike, buyPrice, buyQty = sym1, sym1Strike, sym1Price, qtyRatio
	default: // SellSym1BuySym2
		sellSym, sellStrike, sellPrice, sellQty = sym1, sym1Strike, sym1Price, qtyRatio
		buySym, buyStrike, buyPrice, buyQty = sym2, sym2Strike, sym2Price, 1
	}

	legs := []models.Leg{
		{Symbol: sellSym, Strike: sellStrike, Right: right, Action: models.Sell, Quantity: sellQty, EntryPrice: sellPrice},
		{Symbol: buySym, Strike: buyStrike, Right: right, Action: models.Buy, Quantity: buyQty, EntryPrice: buyPrice},
	}
	credit := (sellPrice * float64(sellQty) * 100) - (buyPrice * float64(buyQty) * 100)
	return legs, credit
}

// estimateMargin sums max(0, 0.20*sell_strike*sell_qty*100 - credit) across
// the call spread and put spread independently, then adds the two.
func estimateMargin(legs []models.Leg, callCredit, putCredit float64) float64 {
	var callMargin, putMargin float64
	for _, l := range legs {
		if l.Action != models.Sell {
			continue
		}
		notional := float64(l.Quantity) * l.Strike * 100 * config.MarginRate
		if l.Right == models.Call {
			callMargin += notional
		} else {
			putMargin += notional
		}
	}
	callMargin = math.Max(0, callMargin-callCredit)
	putMargin = math.Max(0, putMargin-putCredit)
	return callMargin + putMargin
}
