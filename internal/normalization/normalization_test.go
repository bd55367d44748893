package normalization

import (
	"testing"
	"time"

	"optionarb/internal/models"
)

func bar(symbol string, ts time.Time, close float64) models.UnderlyingBar {
	return models.UnderlyingBar{Symbol: symbol, Timestamp: ts, Close: close}
}

func TestDivergenceZeroAtEntry(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	sym1 := []models.UnderlyingBar{bar("SPY", t0, 450)}
	sym2 := []models.UnderlyingBar{bar("SPX", t0, 4500)}

	points := Divergence(sym1, sym2, 10)
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	if points[0].PctChangeSym1 != 0 || points[0].PctChangeSym2 != 0 {
		t.Errorf("first bar should have zero pct change, got %+v", points[0])
	}
	if points[0].PctGap != 0 {
		t.Errorf("PctGap at entry = %v, want 0", points[0].PctGap)
	}
}

func TestDivergenceTracksLockstepMove(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	sym1 := []models.UnderlyingBar{bar("SPY", t0, 450), bar("SPY", t1, 454.5)}  // +1%
	sym2 := []models.UnderlyingBar{bar("SPX", t0, 4500), bar("SPX", t1, 4545)} // +1%

	points := Divergence(sym1, sym2, 10)
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	gap := points[1].PctGap
	if gap < -1e-9 || gap > 1e-9 {
		t.Errorf("lockstep move should have ~zero gap, got %v", gap)
	}
}

func TestDivergenceInnerJoinsOnTimestamp(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	sym1 := []models.UnderlyingBar{bar("SPY", t0, 450), bar("SPY", t1, 451)}
	sym2 := []models.UnderlyingBar{bar("SPX", t0, 4500)} // no matching t1 bar

	points := Divergence(sym1, sym2, 10)
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1 (only t0 has a match on both sides)", len(points))
	}
}

func TestSpreadSeriesNormalizesByRatio(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	sym1Opt := []models.OptionBar{{Symbol: "SPY", Timestamp: t0, Close: 1.00}}
	sym2Opt := []models.OptionBar{{Symbol: "SPX", Timestamp: t0, Close: 10.50}}

	points := SpreadSeries(sym1Opt, sym2Opt, 10)
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	if points[0].Sym2Normalized != 1.05 {
		t.Errorf("Sym2Normalized = %v, want 1.05", points[0].Sym2Normalized)
	}
	wantSpread := 1.05 - 1.00
	if points[0].Spread != wantSpread {
		t.Errorf("Spread = %v, want %v", points[0].Spread, wantSpread)
	}
}
