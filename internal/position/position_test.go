package position

import (
	"testing"

	"optionarb/internal/errkind"
	"optionarb/internal/models"
)

func callsOnlyConfig(t *testing.T) models.StrategyConfig {
	t.Helper()
	cfg, err := models.NewStrategyConfig("SPY", "SPX", 10, 5, models.CallsOnly, models.SellSym2BuySym1, models.SellSym1BuySym2)
	if err != nil {
		t.Fatalf("NewStrategyConfig: %v", err)
	}
	return cfg
}

func TestBuildSellSym2BuySym1Credit(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym1Call: {Price: 1.00},
		LegSym2Call: {Price: 10.50},
	}
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	pos, err := Build(cfg, prices, entry, 450, 4500)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// sell 1 sym2 @ 10.50, buy 10 sym1 @ 1.00
	wantCredit := 10.50*1*100 - 1.00*10*100
	if pos.TotalCredit != wantCredit {
		t.Errorf("TotalCredit = %v, want %v", pos.TotalCredit, wantCredit)
	}

	var sumCashFlow float64
	for _, leg := range pos.Legs {
		sumCashFlow += leg.CashFlow()
	}
	if sumCashFlow != pos.TotalCredit {
		t.Errorf("sum(leg.CashFlow()) = %v, TotalCredit = %v, want equal", sumCashFlow, pos.TotalCredit)
	}
}

func TestBuildRejectsStaleLeg(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym1Call: {Price: 1.00, IsStale: true},
		LegSym2Call: {Price: 10.50},
	}
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	_, err := Build(cfg, prices, entry, 450, 4500)
	if err == nil {
		t.Fatal("Build with a stale leg price should fail")
	}
	if !errkind.Is(err, errkind.PreconditionFailed) {
		kind, _ := errkind.Of(err)
		t.Errorf("error kind = %v, want precondition_not_met", kind)
	}
}

func TestBuildRejectsMissingLeg(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym2Call: {Price: 10.50},
	}
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	_, err := Build(cfg, prices, entry, 450, 4500)
	if err == nil {
		t.Fatal("Build with a missing leg price should fail")
	}
	if !errkind.Is(err, errkind.PreconditionFailed) {
		kind, _ := errkind.Of(err)
		t.Errorf("error kind = %v, want precondition_not_met", kind)
	}
}

func TestBuildFlagsMoneynessMismatch(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym1Call: {Price: 1.00},
		LegSym2Call: {Price: 10.50},
	}
	// sym1 strike is 1% above entry, sym2 strike is at entry: >0.05% mismatch
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	pos, err := Build(cfg, prices, entry, 454.5, 4500)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !pos.MoneynessWarn {
		t.Error("MoneynessWarn = false, want true for a 1%% strike mismatch")
	}
}

func TestBuildNoMoneynessWarnWhenAligned(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym1Call: {Price: 1.00},
		LegSym2Call: {Price: 10.50},
	}
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	pos, err := Build(cfg, prices, entry, 450, 4500)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pos.MoneynessWarn {
		t.Error("MoneynessWarn = true, want false when both strikes sit at entry")
	}
}

func TestEstimateMarginNonNegative(t *testing.T) {
	cfg := callsOnlyConfig(t)
	prices := map[string]*models.PriceQuote{
		LegSym1Call: {Price: 50.00},
		LegSym2Call: {Price: 0.50},
	}
	entry := EntryUnderlying{Sym1: 450, Sym2: 4500}

	pos, err := Build(cfg, prices, entry, 450, 4500)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pos.EstimatedMargin < 0 {
		t.Errorf("EstimatedMargin = %v, must never be negative", pos.EstimatedMargin)
	}
}
