// Package normalization joins and scales sym1/sym2 series for divergence
// and spread overlay analysis.
package normalization

import (
	"time"

	"optionarb/internal/models"
)

// DivergencePoint is one timestamp's underlying divergence reading.
type DivergencePoint struct {
	Timestamp      time.Time
	CloseSym1      float64
	CloseSym2      float64
	PctChangeSym1  float64
	PctChangeSym2  float64
	PctGap         float64
	DollarGap      float64
}

// SpreadPoint is one timestamp's normalized option-price spread reading.
type SpreadPoint struct {
	Timestamp      time.Time
	Sym1Price      float64
	Sym2Normalized float64
	Spread         float64
	SpreadPct      float64
}

// NormalizeSeries divides every OptionBar's close by ratio, returning a
// parallel slice of normalized close prices indexed the same as series.
func NormalizeSeries(series []models.OptionBar, ratio float64) []float64 {
	out := make([]float64, len(series))
	for i, bar := range series {
		out[i] = bar.Close / ratio
	}
	return out
}

// Divergence inner-joins sym1Series and sym2Series on timestamp and computes
// each side's percent change from its own first bar, plus the gap between
// them. qtyRatio scales the dollar gap back to sym1 units.
func Divergence(sym1Series, sym2Series []models.UnderlyingBar, qtyRatio int) []DivergencePoint {
	if len(sym1Series) == 0 || len(sym2Series) == 0 {
		return nil
	}
	sym1Open := sym1Series[0].Close
	sym2Open := sym2Series[0].Close

	sym2ByTime := make(map[time.Time]models.UnderlyingBar, len(sym2Series))
	for _, b := range sym2Series {
		sym2ByTime[b.Timestamp] = b
	}

	var out []DivergencePoint
	for _, b1 := range sym1Series {
		b2, ok := sym2ByTime[b1.Timestamp]
		if !ok {
			continue
		}
		pct1 := (b1.Close - sym1Open) / sym1Open * 100
		pct2 := (b2.Close - sym2Open) / sym2Open * 100
		out = append(out, DivergencePoint{
			Timestamp:     b1.Timestamp,
			CloseSym1:     b1.Close,
			CloseSym2:     b2.Close,
			PctChangeSym1: pct1,
			PctChangeSym2: pct2,
			PctGap:        pct2 - pct1,
			DollarGap:     b2.Close/float64(qtyRatio) - b1.Close,
		})
	}
	return out
}

// SpreadSeries inner-joins sym1Opt and sym2Opt (already filtered to a single
// liquidity-qualified contract each) on timestamp, normalizes sym2 by ratio,
// and computes the spread: sym2_normalized - sym1_price.
func SpreadSeries(sym1Opt, sym2Opt []models.OptionBar, ratio float64) []SpreadPoint {
	sym2ByTime := make(map[time.Time]models.OptionBar, len(sym2Opt))
	for _, b := range sym2Opt {
		sym2ByTime[b.Timestamp] = b
	}

	var out []SpreadPoint
	for _, b1 := range sym1Opt {
		b2, ok := sym2ByTime[b1.Timestamp]
		if !ok {
			continue
		}
		norm := b2.Close / ratio
		spread := norm - b1.Close
		var spreadPct float64
		if b1.Close != 0 {
			spreadPct = spread / b1.Close * 100
		}
		out = append(out, SpreadPoint{
			Timestamp:      b1.Timestamp,
			Sym1Price:      b1.Close,
			Sym2Normalized: norm,
			Spread:         spread,
			SpreadPct:      spreadPct,
		})
	}
	return out
}
