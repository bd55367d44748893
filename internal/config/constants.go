// Package config provides the core's business constants (this file) and the
// process-scope operational configuration (config.go, viper-backed).
package config

// Business constants of spec.md §4.1. These are compile-time literals, never
// mutated after process start — that invariant is exactly what makes the
// core's analytical functions pure and deterministic.
const (
	// QtyRatioSPX is the SPY-leg multiple for an SPX-class sym2.
	QtyRatioSPX = 10
	// QtyRatioDefault is the ratio for 1:1 pairs (SPY/XSP, XSP/SPX).
	QtyRatioDefault = 1

	// StrikeStepSPX is SPX's minimum strike increment in dollars.
	StrikeStepSPX = 5
	// StrikeStepDefault is SPY/XSP's minimum strike increment in dollars.
	StrikeStepDefault = 1

	// MoneynessWarnThresholdPct is the UI warning threshold for moneyness
	// mismatch between the two legs of a spread, as a percent.
	MoneynessWarnThresholdPct = 0.05

	// ScannerPairTolerance is the scanner's strike-pair matching admissibility,
	// as a fraction of the open-ratio-implied target strike.
	ScannerPairTolerance = 0.005

	// WideSpreadThresholdPct flags a quote whose spread exceeds this percent
	// of its midpoint.
	WideSpreadThresholdPct = 20

	// MarginRate is the fraction of short notional used to estimate margin.
	MarginRate = 0.20

	// GridPricePoints is the number of sym1 price points swept by the grid search.
	GridPricePoints = 50

	// GridPriceRangePct is the +/- range swept around the entry sym1 price.
	GridPriceRangePct = 0.05

	// DefaultMinVolume is the scanner's default minimum per-leg daily volume.
	DefaultMinVolume = 10
)

// GridBasisDriftLevels are the fractional basis-drift multipliers applied to
// the entry sym2/sym1 ratio during the grid search.
var GridBasisDriftLevels = []float64{-0.001, 0.0, 0.001}

// QtyRatioFor returns the canonical quantity ratio for a sym2 symbol.
func QtyRatioFor(sym2 string) int {
	if sym2 == "SPX" {
		return QtyRatioSPX
	}
	return QtyRatioDefault
}

// StrikeStepFor returns the canonical strike step for a sym2 symbol.
func StrikeStepFor(sym2 string) int {
	if sym2 == "SPX" {
		return StrikeStepSPX
	}
	return StrikeStepDefault
}

// ConstantsTable exposes every named constant above as a map, purely so a
// sync test can assert that the code and the documentation (spec.md §4.1)
// never diverge. Keys match the names used in spec.md verbatim.
func ConstantsTable() map[string]float64 {
	return map[string]float64{
		"QTY_RATIO_SPX":             QtyRatioSPX,
		"QTY_RATIO_DEFAULT":         QtyRatioDefault,
		"STRIKE_STEP_SPX":           StrikeStepSPX,
		"STRIKE_STEP_DEFAULT":       StrikeStepDefault,
		"MONEYNESS_WARN_THRESHOLD":  MoneynessWarnThresholdPct,
		"SCANNER_PAIR_TOLERANCE":    ScannerPairTolerance,
		"WIDE_SPREAD_THRESHOLD":     WideSpreadThresholdPct,
		"MARGIN_RATE":               MarginRate,
		"GRID_PRICE_POINTS":         GridPricePoints,
		"GRID_PRICE_RANGE_PCT":      GridPriceRangePct,
		"DEFAULT_MIN_VOLUME":        DefaultMinVolume,
	}
}
