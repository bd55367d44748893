package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndCloseTrade(t *testing.T) {
	s := openTestStore(t)

	now := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	id, err := s.InsertTrade(TradeRecord{
		TradeDate:   now,
		Sym1:        "SPY",
		Sym2:        "SPX",
		Sym1Strike:  450,
		Sym2Strike:  4500,
		Sym1Price:   1.00,
		Sym2Price:   10.50,
		EntryCredit: 950,
		EntryTime:   now,
		Status:      "ACTIVE",
	})
	if err != nil {
		t.Fatalf("InsertTrade: %v", err)
	}
	if id == 0 {
		t.Fatal("InsertTrade returned id=0")
	}

	active, err := s.ActiveTrades()
	if err != nil {
		t.Fatalf("ActiveTrades: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("len(ActiveTrades()) = %d, want 1", len(active))
	}
	if active[0].EntryCredit != 950 {
		t.Errorf("EntryCredit = %v, want 950", active[0].EntryCredit)
	}

	exitTime := now.Add(4 * time.Hour)
	if err := s.CloseTrade(id, 0, 0, 0, 300, exitTime, "expired"); err != nil {
		t.Fatalf("CloseTrade: %v", err)
	}

	active, err = s.ActiveTrades()
	if err != nil {
		t.Fatalf("ActiveTrades after close: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("len(ActiveTrades()) after close = %d, want 0", len(active))
	}
}

func TestTradesOnDate(t *testing.T) {
	s := openTestStore(t)

	day1 := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 3, 14, 30, 0, 0, time.UTC)

	for _, d := range []time.Time{day1, day2} {
		if _, err := s.InsertTrade(TradeRecord{TradeDate: d, Sym1: "SPY", Sym2: "SPX", EntryTime: d, Status: "ACTIVE"}); err != nil {
			t.Fatalf("InsertTrade: %v", err)
		}
	}

	trades, err := s.TradesOnDate(day1)
	if err != nil {
		t.Fatalf("TradesOnDate: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("len(TradesOnDate(day1)) = %d, want 1", len(trades))
	}
}

func TestUpsertDailySummaryReplaces(t *testing.T) {
	s := openTestStore(t)
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := s.UpsertDailySummary(DailySummary{Date: date, TradesCount: 3, NetPnL: 500}); err != nil {
		t.Fatalf("UpsertDailySummary: %v", err)
	}
	if err := s.UpsertDailySummary(DailySummary{Date: date, TradesCount: 5, NetPnL: 900}); err != nil {
		t.Fatalf("UpsertDailySummary (replace): %v", err)
	}
}

func TestRunStateDefaultsThenSaves(t *testing.T) {
	s := openTestStore(t)

	rs, err := s.RunState()
	if err != nil {
		t.Fatalf("RunState: %v", err)
	}
	if rs.TradesToday != 0 {
		t.Errorf("default RunState.TradesToday = %d, want 0", rs.TradesToday)
	}

	rs.TradesToday = 4
	rs.IsScanning = true
	if err := s.SaveRunState(rs); err != nil {
		t.Fatalf("SaveRunState: %v", err)
	}

	reloaded, err := s.RunState()
	if err != nil {
		t.Fatalf("RunState (reload): %v", err)
	}
	if reloaded.TradesToday != 4 || !reloaded.IsScanning {
		t.Errorf("reloaded RunState = %+v, want TradesToday=4 IsScanning=true", reloaded)
	}
}
