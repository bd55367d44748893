package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"optionarb/internal/models"
	"optionarb/internal/pnl"
)

func TestBuildSnapshotStableFieldNames(t *testing.T) {
	cfg, err := models.NewStrategyConfig("SPY", "SPX", 10, 5, models.CallsOnly, models.SellSym2BuySym1, models.SellSym1BuySym2)
	if err != nil {
		t.Fatalf("NewStrategyConfig: %v", err)
	}
	pos := models.Position{
		TotalCredit: 500,
		Legs: []models.Leg{
			{Symbol: "SPX", Strike: 4500, Right: models.Call, Action: models.Sell, Quantity: 1, EntryPrice: 10.5},
		},
	}
	best := pnl.Scenario{NetPnL: 600, Sym1Price: 455, Sym2Price: 4550, BasisDriftPct: 0.1}
	worst := pnl.Scenario{NetPnL: -200, Sym1Price: 445, Sym2Price: 4440, BasisDriftPct: -0.1}

	snap := BuildSnapshot(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "14:30:00", cfg, 450, 4500, pos, best, worst, nil)

	data, err := snap.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for _, field := range []string{
		`"sym1_strike"`, `"sym2_strike"`, `"credit"`,
		`"best_worst_case"`, `"net_pnl"`, `"basis_drift_pct"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("marshaled snapshot missing stable field %s", field)
		}
	}

	var roundTrip map[string]any
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("round-trip unmarshal: %v", err)
	}
}

func TestWithActualOutcomePctOfBestCase(t *testing.T) {
	snap := Snapshot{BestCase: BestWorstBlock{NetPnL: 500}}
	withOutcome := snap.WithActualOutcome(250)

	if withOutcome.ActualOutcome == nil {
		t.Fatal("ActualOutcome not set")
	}
	if withOutcome.ActualOutcome.PctOfBestCase != 50 {
		t.Errorf("PctOfBestCase = %v, want 50", withOutcome.ActualOutcome.PctOfBestCase)
	}
}

func TestWithActualOutcomeZeroBestCase(t *testing.T) {
	snap := Snapshot{BestCase: BestWorstBlock{NetPnL: 0}}
	withOutcome := snap.WithActualOutcome(100)

	if withOutcome.ActualOutcome.PctOfBestCase != 0 {
		t.Errorf("PctOfBestCase = %v, want 0 when best case is 0", withOutcome.ActualOutcome.PctOfBestCase)
	}
}
