package scanner

import (
	"context"
	"reflect"
	"testing"
	"time"

	"optionarb/internal/config"
	"optionarb/internal/models"
)

// syntheticRequest builds a Request with two strike pairs (450/4500 and
// 460/4600 at a 10:1 SPY/SPX ratio), each with five timestamps of liquid
// trade prints, enough for scanPair's five-point minimum.
func syntheticRequest() Request {
	base := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)

	var trades []models.OptionBar
	pairs := []struct {
		sym1Strike, sym2Strike float64
		sym1Base, sym2Base     float64
	}{
		{450, 4500, 1.00, 10.50},
		{460, 4600, 0.60, 6.20},
	}
	for _, p := range pairs {
		for i := 0; i < 5; i++ {
			t := base.Add(time.Duration(i) * time.Minute)
			trades = append(trades,
				models.OptionBar{Symbol: "SPY", Strike: p.sym1Strike, Right: models.Call, Timestamp: t, Close: p.sym1Base + 0.01*float64(i), Volume: 50},
				models.OptionBar{Symbol: "SPX", Strike: p.sym2Strike, Right: models.Call, Timestamp: t, Close: p.sym2Base + 0.05*float64(i), Volume: 50},
			)
		}
	}

	return Request{
		Trades:         trades,
		Sym1Underlying: []models.UnderlyingBar{{Symbol: "SPY", Timestamp: base, Close: 450}},
		Sym2Underlying: []models.UnderlyingBar{{Symbol: "SPX", Timestamp: base, Close: 4500}},
		Sym1:           "SPY",
		Sym2:           "SPX",
		QtyRatio:       10,
		Right:          models.Call,
		MinVolume:      10,
	}
}

func TestScanFindsBothSyntheticPairs(t *testing.T) {
	result, err := Scan(context.Background(), syntheticRequest(), config.DefaultMinVolume)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Partial {
		t.Fatal("Scan returned Partial=true for an uncancelled context")
	}
	if len(result.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(result.Results))
	}
	if len(result.BySafety) != 2 || len(result.ByProfit) != 2 || len(result.ByRiskReward) != 2 {
		t.Fatalf("ranked views have wrong length: safety=%d profit=%d rr=%d",
			len(result.BySafety), len(result.ByProfit), len(result.ByRiskReward))
	}
	for _, r := range result.Results {
		if !r.LiquidityOK {
			t.Errorf("pair %.0f/%.0f: LiquidityOK = false, want true", r.Sym1Strike, r.Sym2Strike)
		}
	}
}

// TestScanDeterministic is the named property from the scanner's spec: Scan
// on identical inputs returns equal result sets (as multisets) and equal
// ranking orders, regardless of the concurrent pool's goroutine scheduling.
func TestScanDeterministic(t *testing.T) {
	req := syntheticRequest()

	r1, err := Scan(context.Background(), req, config.DefaultMinVolume)
	if err != nil {
		t.Fatalf("Scan (1st): %v", err)
	}
	r2, err := Scan(context.Background(), req, config.DefaultMinVolume)
	if err != nil {
		t.Fatalf("Scan (2nd): %v", err)
	}

	if !sameMultiset(r1.Results, r2.Results) {
		t.Errorf("Results differ as multisets across identical runs:\n1st: %+v\n2nd: %+v", r1.Results, r2.Results)
	}

	if !reflect.DeepEqual(r1.BySafety, r2.BySafety) {
		t.Errorf("BySafety order differs across identical runs:\n1st: %+v\n2nd: %+v", r1.BySafety, r2.BySafety)
	}
	if !reflect.DeepEqual(r1.ByProfit, r2.ByProfit) {
		t.Errorf("ByProfit order differs across identical runs:\n1st: %+v\n2nd: %+v", r1.ByProfit, r2.ByProfit)
	}
	if !reflect.DeepEqual(r1.ByRiskReward, r2.ByRiskReward) {
		t.Errorf("ByRiskReward order differs across identical runs:\n1st: %+v\n2nd: %+v", r1.ByRiskReward, r2.ByRiskReward)
	}
}

func sameMultiset(a, b []models.ScanResult) bool {
	if len(a) != len(b) {
		return false
	}
	sortByStrike := func(s []models.ScanResult) []models.ScanResult {
		out := append([]models.ScanResult(nil), s...)
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && tieBreak(out[j], out[j-1]); j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
		return out
	}
	return reflect.DeepEqual(sortByStrike(a), sortByStrike(b))
}

func TestScanCancelledContextReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Scan(ctx, syntheticRequest(), config.DefaultMinVolume)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !result.Partial {
		t.Error("Scan with a pre-cancelled context: Partial = false, want true")
	}
	if len(result.Results) != 0 {
		t.Errorf("Scan with a pre-cancelled context: len(Results) = %d, want 0", len(result.Results))
	}
}

func TestScanEmptyUnderlyingReturnsEmptyResult(t *testing.T) {
	req := syntheticRequest()
	req.Sym1Underlying = nil

	result, err := Scan(context.Background(), req, config.DefaultMinVolume)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Results) != 0 || result.Partial {
		t.Errorf("Scan with no underlying bars = %+v, want empty non-partial Result", result)
	}
}
