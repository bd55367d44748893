// Package models provides domain types for the options-arbitrage analytical core.
package models

import (
	"fmt"
	"math"
	"time"

	"optionarb/internal/errkind"
)

// Right identifies a call or put option contract.
type Right string

const (
	Call Right = "C"
	Put  Right = "P"
)

// Action is the side of a leg: buy or sell.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
)

// StrategyType selects which leg pairs a Position carries.
type StrategyType string

const (
	Full      StrategyType = "full"
	CallsOnly StrategyType = "calls_only"
	PutsOnly  StrategyType = "puts_only"
)

// Direction names which symbol is sold and which is bought within a spread.
// The zero value is invalid; use the two named constants.
type Direction string

const (
	// SellSym2BuySym1 sells sym2 (qty=1) and buys sym1 (qty=qty_ratio).
	SellSym2BuySym1 Direction = "sellSym2_buySym1"
	// SellSym1BuySym2 sells sym1 (qty=qty_ratio) and buys sym2 (qty=1).
	SellSym1BuySym2 Direction = "sellSym1_buySym2"
)

// PriceSource names where a PriceQuote's price came from.
type PriceSource string

const (
	SourceMidpoint PriceSource = "midpoint"
	SourceTrade    PriceSource = "trade"
)

// Warning annotates a liquidity condition on a PriceQuote.
type Warning string

const (
	WarningWideSpread Warning = "wide_spread"
	WarningLowVolume  Warning = "low_volume"
	WarningNoQuote    Warning = "no_quote"
)

// StrategyConfig is the immutable per-analysis configuration of spec.md §3.
type StrategyConfig struct {
	Sym1           string
	Sym2           string
	QtyRatio       int
	StrikeStepSym2 int
	StrategyType   StrategyType
	CallDirection  Direction
	PutDirection   Direction
}

// NewStrategyConfig validates and constructs a StrategyConfig.
func NewStrategyConfig(sym1, sym2 string, qtyRatio, strikeStepSym2 int, strategyType StrategyType, callDirection, putDirection Direction) (StrategyConfig, error) {
	cfg := StrategyConfig{
		Sym1:           sym1,
		Sym2:           sym2,
		QtyRatio:       qtyRatio,
		StrikeStepSym2: strikeStepSym2,
		StrategyType:   strategyType,
		CallDirection:  callDirection,
		PutDirection:   putDirection,
	}
	if err := cfg.Validate(); err != nil {
		return StrategyConfig{}, err
	}
	return cfg, nil
}

// Validate checks StrategyConfig invariants.
func (c StrategyConfig) Validate() error {
	if c.Sym1 == "" || c.Sym2 == "" {
		return errkind.InvalidArgument("sym1 and sym2 must be non-empty")
	}
	if c.QtyRatio <= 0 {
		return errkind.InvalidArgument(fmt.Sprintf("qty_ratio must be positive, got %d", c.QtyRatio))
	}
	if c.StrikeStepSym2 != 5 && c.StrikeStepSym2 != 1 {
		return errkind.InvalidArgument(fmt.Sprintf("strike_step_sym2 must be 5 or 1, got %d", c.StrikeStepSym2))
	}
	switch c.StrategyType {
	case Full, CallsOnly, PutsOnly:
	default:
		return errkind.InvalidArgument(fmt.Sprintf("unknown strategy_type %q", c.StrategyType))
	}
	if c.StrategyType == Full || c.StrategyType == CallsOnly {
		switch c.CallDirection {
		case SellSym2BuySym1, SellSym1BuySym2:
		default:
			return errkind.InvalidArgument(fmt.Sprintf("unknown call_direction %q", c.CallDirection))
		}
	}
	if c.StrategyType == Full || c.StrategyType == PutsOnly {
		switch c.PutDirection {
		case SellSym1BuySym2, SellSym2BuySym1:
		default:
			return errkind.InvalidArgument(fmt.Sprintf("unknown put_direction %q", c.PutDirection))
		}
	}
	return nil
}

// UnderlyingBar is a minute-aligned OHLCV bar for an underlying symbol.
type UnderlyingBar struct {
	Symbol    string
	Timestamp time.Time // UTC, minute-aligned
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// OptionBar is a trade-print OHLCV bar for a single option contract.
// Volume=0 indicates a carried-forward stale print.
type OptionBar struct {
	Symbol    string
	Strike    float64
	Right     Right
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// OptionQuoteBar is a bid/ask snapshot for a single option contract.
type OptionQuoteBar struct {
	Symbol    string
	Strike    float64
	Right     Right
	Timestamp time.Time
	Bid       float64
	Ask       float64
}

// Midpoint returns (bid+ask)/2.
func (q OptionQuoteBar) Midpoint() float64 {
	return (q.Bid + q.Ask) / 2
}

// Valid reports whether both sides of the quote are positive.
func (q OptionQuoteBar) Valid() bool {
	return q.Bid > 0 && q.Ask > 0
}

// PriceQuote is a derived, liquidity-annotated price lookup result.
// It is never persisted and never cached across requests.
type PriceQuote struct {
	Price       float64
	Source      PriceSource
	Volume      int64
	Bid         *float64
	Ask         *float64
	Spread      *float64
	SpreadPct   *float64
	IsStale     bool
	Warning     Warning // empty string if none
}

// Leg is one side of a multi-leg options position.
type Leg struct {
	Symbol     string
	Strike     float64
	Right      Right
	Action     Action
	Quantity   int
	EntryPrice float64
}

// CashFlow returns the entry cash flow of the leg: +entry*qty*100 for a sell,
// -entry*qty*100 for a buy.
func (l Leg) CashFlow() float64 {
	sign := -1.0
	if l.Action == Sell {
		sign = 1.0
	}
	return sign * l.EntryPrice * float64(l.Quantity) * 100
}

// Position is a 0-4 leg market-neutral credit position.
type Position struct {
	StrategyType    StrategyType
	Legs            []Leg
	CallCredit      float64
	PutCredit       float64
	TotalCredit     float64
	EstimatedMargin float64
	MoneynessWarn   bool
}

// ScanResult is one candidate strike pair's scored outcome from a scan run.
type ScanResult struct {
	Sym1Strike      float64
	Sym2Strike      float64
	MoneynessDiffPct float64
	MaxSpread       float64
	MaxSpreadTime   time.Time
	CreditAtMax     float64
	BestWorstPnL    float64
	BestWorstTime   time.Time
	Direction       string // "sellSym2" or "sellSym1"
	Sym1Volume      int64
	Sym2Volume      int64
	PriceSource     PriceSource
	LiquidityOK     bool
	Warning         string // set when this pair's scan encountered a non-fatal error
}

// RiskReward returns credit/|worst|, or +Inf when BestWorstPnL is non-negative.
func (r ScanResult) RiskReward() float64 {
	if r.BestWorstPnL >= 0 {
		return math.Inf(1)
	}
	return r.CreditAtMax / absFloat(r.BestWorstPnL)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
