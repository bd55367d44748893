// Package scanner sweeps all admissible sym1/sym2 strike pairs for a trading
// day and ranks them by safety, profit, and risk/reward.
package scanner

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"optionarb/internal/config"
	"optionarb/internal/models"
	"optionarb/internal/pnl"
	"optionarb/internal/position"
	"optionarb/internal/pricing"
)

// Request bundles one scan invocation's inputs.
type Request struct {
	Trades          []models.OptionBar
	Quotes          []models.OptionQuoteBar
	Sym1Underlying  []models.UnderlyingBar // ascending by time
	Sym2Underlying  []models.UnderlyingBar // ascending by time
	Sym1            string
	Sym2            string
	QtyRatio        int
	Right           models.Right
	MinVolume       int
}

// Result is the outcome of a full scan: the frozen result set plus three
// ranked views over it, and whether the scan was cut short by cancellation.
type Result struct {
	Results     []models.ScanResult
	BySafety    []models.ScanResult
	ByProfit    []models.ScanResult
	ByRiskReward []models.ScanResult
	Partial     bool
}

type pricedPoint struct {
	Timestamp time.Time
	Price     float64
	Source    models.PriceSource
	Volume    int64
}

// Scan sweeps every sym1/sym2 strike pair within config.ScannerPairTolerance
// of the opening ratio, builds each pair's spread series, picks an entry
// time via the quick worst-case heuristic, and re-prices that entry through
// the full grid search of internal/pnl. Pairs are independent and MAY run
// concurrently; ctx is checked between pairs, yielding partial=true and no
// results if cancelled.
func Scan(ctx context.Context, req Request, minVolumeDefault int) (Result, error) {
	if len(req.Sym1Underlying) == 0 || len(req.Sym2Underlying) == 0 {
		return Result{}, nil
	}
	if req.MinVolume == 0 {
		req.MinVolume = minVolumeDefault
	}

	openSym1 := req.Sym1Underlying[0].Close
	openSym2 := req.Sym2Underlying[0].Close
	openRatio := openSym2 / openSym1

	sym1Strikes, sym2Strikes := distinctStrikes(req.Trades, req.Quotes, req.Sym1, req.Right), distinctStrikes(req.Trades, req.Quotes, req.Sym2, req.Right)
	pairs := matchStrikePairs(sym1Strikes, sym2Strikes, openRatio)

	var (
		mu       sync.Mutex
		results  []models.ScanResult
		cancelled int32
	)

	p := pool.New().WithMaxGoroutines(maxGoroutines())

	for _, pair := range pairs {
		pair := pair
		p.Go(func() {
			if ctx.Err() != nil {
				atomic.StoreInt32(&cancelled, 1)
				return
			}
			r, ok := scanPair(req, pair.sym1Strike, pair.sym2Strike, openRatio, openSym1, openSym2)
			if !ok {
				return
			}
			if ctx.Err() != nil {
				atomic.StoreInt32(&cancelled, 1)
				return
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}
	p.Wait()

	if atomic.LoadInt32(&cancelled) != 0 {
		return Result{Partial: true}, nil
	}

	bySafety := rankBySafety(results)
	byProfit := rankByProfit(results)
	byRiskReward := rankByRiskReward(results)

	return Result{
		Results:      results,
		BySafety:     bySafety,
		ByProfit:     byProfit,
		ByRiskReward: byRiskReward,
	}, nil
}

func maxGoroutines() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

type strikePair struct {
	sym1Strike, sym2Strike float64
}

func matchStrikePairs(sym1Strikes, sym2Strikes []float64, openRatio float64) []strikePair {
	var pairs []strikePair
	for _, s1 := range sym1Strikes {
		target := s1 * openRatio
		if target == 0 {
			continue
		}
		for _, s2 := range sym2Strikes {
			if math.Abs(s2-target)/target <= config.ScannerPairTolerance {
				pairs = append(pairs, strikePair{s1, s2})
			}
		}
	}
	return pairs
}

func distinctStrikes(trades []models.OptionBar, quotes []models.OptionQuoteBar, symbol string, right models.Right) []float64 {
	seen := make(map[float64]bool)
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
	out := make([]float64, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Float64s(out)
	return out
}

// scanPair builds the priced spread series for one candidate pair, picks an
// entry time via the quick worst-case heuristic, and re-prices that entry
// through the full grid search.
func scanPair(req Request, sym1Strike, sym2Strike, openRatio, openSym1, openSym2 float64) (models.ScanResult, bool) {
	sym1Series, sym1Vol := pricedSeries(req.Trades, req.Quotes, req.Sym1, sym1Strike, req.Right)
	sym2Series, sym2Vol := pricedSeries(req.Trades, req.Quotes, req.Sym2, sym2Strike, req.Right)
	if len(sym1Series) == 0 || len(sym2Series) == 0 {
		return models.ScanResult{}, false
	}

	sym2ByTime := make(map[time.Time]pricedPoint, len(sym2Series))
	for _, p := range sym2Series {
		sym2ByTime[p.Timestamp] = p
	}

	type joined struct {
		t      time.Time
		spread float64
		source models.PriceSource
	}
	var merged []joined
	for _, p1 := range sym1Series {
		p2, ok := sym2ByTime[p1.Timestamp]
		if !ok {
			continue
		}
		spread := p2.Price/openRatio - p1.Price
		source := models.SourceTrade
		if p1.Source == models.SourceMidpoint && p2.Source == models.SourceMidpoint {
			source = models.SourceMidpoint
		}
		merged = append(merged, joined{t: p1.Timestamp, spread: spread, source: source})
	}
	if len(merged) < 5 {
		return models.ScanResult{}, false
	}

	sym1Moneyness := (sym1Strike - openSym1) / openSym1
	sym2Moneyness := (sym2Strike - openSym2) / openSym2
	moneynessDiff := math.Abs(sym1Moneyness - sym2Moneyness)

	var maxSpread float64
	var maxSpreadTime time.Time
	var bestQuick float64 = math.Inf(-1)
	var bestQuickTime time.Time
	var bestQuickSource models.PriceSource

	for i, m := range merged {
		abs := math.Abs(m.spread)
		if i == 0 || abs > maxSpread {
			maxSpread = abs
			maxSpreadTime = m.t
		}
		credit := abs * float64(req.QtyRatio) * 100
		basisCost := openRatio * 0.001 * sym1Strike * float64(req.QtyRatio) * 100
		moneynessCost := moneynessDiff * sym1Strike * float64(req.QtyRatio) * 100
		quick := credit - basisCost - moneynessCost
		if quick > bestQuick {
			bestQuick = quick
			bestQuickTime = m.t
			bestQuickSource = m.source
		}
	}

	entrySym1 := nearestUnderlying(req.Sym1Underlying, bestQuickTime)
	entrySym2 := nearestUnderlying(req.Sym2Underlying, bestQuickTime)

	sym1Price := priceAtOrNearest(sym1Series, bestQuickTime)
	sym2Price := priceAtOrNearest(sym2Series, bestQuickTime)
	spreadAtEntry := sym2Price/openRatio - sym1Price

	direction := models.SellSym2BuySym1
	if spreadAtEntry <= 0 {
		direction = models.SellSym1BuySym2
	}

	var cfg models.StrategyConfig
	prices := map[string]*models.PriceQuote{}
	if req.Right == models.Call {
		cfg, _ = models.NewStrategyConfig(req.Sym1, req.Sym2, req.QtyRatio, config.StrikeStepFor(req.Sym2), models.CallsOnly, direction, models.SellSym1BuySym2)
		prices[position.LegSym1Call] = &models.PriceQuote{Price: sym1Price, Source: bestQuickSource}
		prices[position.LegSym2Call] = &models.PriceQuote{Price: sym2Price, Source: bestQuickSource}
	} else {
		cfg, _ = models.NewStrategyConfig(req.Sym1, req.Sym2, req.QtyRatio, config.StrikeStepFor(req.Sym2), models.PutsOnly, models.SellSym2BuySym1, direction)
		prices[position.LegSym1Put] = &models.PriceQuote{Price: sym1Price, Source: bestQuickSource}
		prices[position.LegSym2Put] = &models.PriceQuote{Price: sym2Price, Source: bestQuickSource}
	}

	pos, err := position.Build(cfg, prices, position.EntryUnderlying{Sym1: entrySym1, Sym2: entrySym2}, sym1Strike, sym2Strike)
	if err != nil {
		return models.ScanResult{
			Sym1Strike: sym1Strike,
			Sym2Strike: sym2Strike,
			Warning:    err.Error(),
		}, true
	}

	_, worst := pnl.BestWorstCase(cfg, pos, entrySym1, entrySym2)

	liquidityOK := sym1Vol >= int64(req.MinVolume) && sym2Vol >= int64(req.MinVolume)
	dirLabel := "sellSym2"
	if direction == models.SellSym1BuySym2 {
		dirLabel = "sellSym1"
	}

	return models.ScanResult{
		Sym1Strike:       sym1Strike,
		Sym2Strike:       sym2Strike,
		MoneynessDiffPct: moneynessDiff * 100,
		MaxSpread:        maxSpread,
		MaxSpreadTime:    maxSpreadTime,
		CreditAtMax:      pos.TotalCredit,
		BestWorstPnL:     worst.NetPnL,
		BestWorstTime:    bestQuickTime,
		Direction:        dirLabel,
		Sym1Volume:       sym1Vol,
		Sym2Volume:       sym2Vol,
		PriceSource:      bestQuickSource,
		LiquidityOK:      liquidityOK,
	}, true
}

// pricedSeries resolves a liquidity-qualified price at every timestamp a
// contract has trade or quote data, via internal/pricing's source
// precedence, and returns the total observed trade volume.
func pricedSeries(trades []models.OptionBar, quotes []models.OptionQuoteBar, symbol string, strike float64, right models.Right) ([]pricedPoint, int64) {
	timeSet := make(map[time.Time]bool)
	var totalVol int64
	for _, t := range trades {
		if t.Symbol == symbol && t.Strike == strike && t.Right == right {
			timeSet[t.Timestamp] = true
			totalVol += t.Volume
		}
	}
	for _, q := range quotes {
		if q.Symbol == symbol && q.Strike == strike && q.Right == right && q.Valid() {
			timeSet[q.Timestamp] = true
		}
	}

	times := make([]time.Time, 0, len(timeSet))
	for t := range timeSet {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	var out []pricedPoint
	for _, t := range times {
		q, err := pricing.PriceAt(trades, quotes, symbol, strike, right, t)
		if err != nil || q == nil || q.IsStale {
			continue
		}
		out = append(out, pricedPoint{Timestamp: t, Price: q.Price, Source: q.Source, Volume: q.Volume})
	}
	return out, totalVol
}

func priceAtOrNearest(series []pricedPoint, t time.Time) float64 {
	if len(series) == 0 {
		return 0
	}
	best := series[0]
	bestDiff := absDuration(best.Timestamp.Sub(t))
	for _, p := range series[1:] {
		d := absDuration(p.Timestamp.Sub(t))
		if d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best.Price
}

func nearestUnderlying(series []models.UnderlyingBar, t time.Time) float64 {
	if len(series) == 0 {
		return 0
	}
	best := series[0]
	bestDiff := absDuration(best.Timestamp.Sub(t))
	for _, b := range series[1:] {
		d := absDuration(b.Timestamp.Sub(t))
		if d < bestDiff {
			best, bestDiff = b, d
		}
	}
	return best.Close
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func rankBySafety(results []models.ScanResult) []models.ScanResult {
	out := append([]models.ScanResult(nil), results...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestWorstPnL != out[j].BestWorstPnL {
			return out[i].BestWorstPnL > out[j].BestWorstPnL
		}
		return tieBreak(out[i], out[j])
	})
	return out
}

func rankByProfit(results []models.ScanResult) []models.ScanResult {
	out := append([]models.ScanResult(nil), results...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreditAtMax != out[j].CreditAtMax {
			return out[i].CreditAtMax > out[j].CreditAtMax
		}
		return tieBreak(out[i], out[j])
	})
	return out
}

func rankByRiskReward(results []models.ScanResult) []models.ScanResult {
	out := append([]models.ScanResult(nil), results...)
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].RiskReward(), out[j].RiskReward()
		if ri != rj {
			return ri > rj
		}
		return tieBreak(out[i], out[j])
	})
	return out
}

// tieBreak orders by sym1_strike asc, then sym2_strike asc.
func tieBreak(a, b models.ScanResult) bool {
	if a.Sym1Strike != b.Sym1Strike {
		return a.Sym1Strike < b.Sym1Strike
	}
	return a.Sym2Strike < b.Sym2Strike
}
