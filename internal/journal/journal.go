// Package journal persists trade records, daily summaries, and run state to
// a local SQLite database. It is a supplement to the analytical core: the
// core itself never touches storage, but a CLI or dashboard wiring around it
// needs somewhere durable to record what was entered and how it resolved.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optionarb/internal/errkind"
)

// TradeRecord is one entered position and, once known, its exit.
type TradeRecord struct {
	ID            int64
	TradeDate     time.Time
	Sym1          string
	Sym2          string
	Sym1Strike    float64
	Sym2Strike    float64
	Sym1Price     float64
	Sym2Price     float64
	EntryCredit   float64
	EntryTime     time.Time
	Status        string // PENDING, ACTIVE, CLOSED, ERROR

	Sym1ExitPrice sql.NullFloat64
	Sym2ExitPrice sql.NullFloat64
	ExitCost      sql.NullFloat64
	ExitTime      sql.NullTime
	ExitReason    sql.NullString

	FinalPnL    sql.NullFloat64
	Commissions float64
}

// DailySummary aggregates one trading date's TradeRecords.
type DailySummary struct {
	Date             time.Time
	TradesCount      int
	WinningTrades    int
	LosingTrades     int
	TotalPnL         float64
	TotalCommissions float64
	NetPnL           float64
	MaxDrawdown      float64
}

// RunState is the single-row process state, surviving restarts.
type RunState struct {
	LastUpdated   time.Time
	IsScanning    bool
	OpenPositions int
	DailyPnL      float64
	TradesToday   int
	ErrorsToday   int
}

// Store wraps a pooled SQLite connection and the journal schema.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a SQLite database at path and ensures the
// journal schema exists. Mirrors the teacher's NewSQLiteStore: WAL mode for
// concurrent readers, a small bounded connection pool since SQLite itself
// serializes writers.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errkind.Wrap(errkind.InconsistentData, "opening journal database", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_date TEXT NOT NULL,
	sym1 TEXT NOT NULL,
	sym2 TEXT NOT NULL,
	sym1_strike REAL NOT NULL,
	sym2_strike REAL NOT NULL,
	sym1_price REAL NOT NULL,
	sym2_price REAL NOT NULL,
	entry_credit REAL NOT NULL,
	entry_time TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	sym1_exit_price REAL,
	sym2_exit_price REAL,
	exit_cost REAL,
	exit_time TEXT,
	exit_reason TEXT,
	final_pnl REAL,
	commissions REAL NOT NULL DEFAULT 0.0
);

CREATE TABLE IF NOT EXISTS daily_summary (
	date TEXT PRIMARY KEY,
	trades_count INTEGER NOT NULL DEFAULT 0,
	winning_trades INTEGER NOT NULL DEFAULT 0,
	losing_trades INTEGER NOT NULL DEFAULT 0,
	total_pnl REAL NOT NULL DEFAULT 0.0,
	total_commissions REAL NOT NULL DEFAULT 0.0,
	net_pnl REAL NOT NULL DEFAULT 0.0,
	max_drawdown REAL NOT NULL DEFAULT 0.0
);

CREATE TABLE IF NOT EXISTS run_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	last_updated TEXT NOT NULL,
	is_scanning INTEGER NOT NULL DEFAULT 0,
	open_positions INTEGER NOT NULL DEFAULT 0,
	daily_pnl REAL NOT NULL DEFAULT 0.0,
	trades_today INTEGER NOT NULL DEFAULT 0,
	errors_today INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return errkind.Wrap(errkind.InconsistentData, "initializing journal schema", err)
	}
	return nil
}

// InsertTrade records a newly entered trade and returns its assigned ID.
func (s *Store) InsertTrade(t TradeRecord) (int64, error) {
	res, err := s.db.Exec(`
INSERT INTO trades (trade_date, sym1, sym2, sym1_strike, sym2_strike, sym1_price, sym2_price, entry_credit, entry_time, status, commissions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeDate.UTC().Format(time.RFC3339), t.Sym1, t.Sym2, t.Sym1Strike, t.Sym2Strike,
		t.Sym1Price, t.Sym2Price, t.EntryCredit, t.EntryTime.UTC().Format(time.RFC3339), t.Status, t.Commissions)
	if err != nil {
		return 0, errkind.Wrap(errkind.InconsistentData, "inserting trade", err)
	}
	return res.LastInsertId()
}

// CloseTrade records a trade's exit and final P&L.
func (s *Store) CloseTrade(id int64, sym1Exit, sym2Exit, exitCost, finalPnL float64, exitTime time.Time, reason string) error {
	_, err := s.db.Exec(`
UPDATE trades SET sym1_exit_price=?, sym2_exit_price=?, exit_cost=?, exit_time=?, exit_reason=?, final_pnl=?, status='CLOSED'
WHERE id=?`, sym1Exit, sym2Exit, exitCost, exitTime.UTC().Format(time.RFC3339), reason, finalPnL, id)
	if err != nil {
		return errkind.Wrap(errkind.InconsistentData, "closing trade", err)
	}
	return nil
}

// ActiveTrades returns every trade whose status is ACTIVE.
func (s *Store) ActiveTrades() ([]TradeRecord, error) {
	return s.queryTrades("SELECT id, trade_date, sym1, sym2, sym1_strike, sym2_strike, sym1_price, sym2_price, entry_credit, entry_time, status, sym1_exit_price, sym2_exit_price, exit_cost, exit_time, exit_reason, final_pnl, commissions FROM trades WHERE status='ACTIVE'")
}

// TradesOnDate returns every trade entered on the given UTC calendar date.
func (s *Store) TradesOnDate(date time.Time) ([]TradeRecord, error) {
	day := date.UTC().Format("2006-01-02")
	return s.queryTrades("SELECT id, trade_date, sym1, sym2, sym1_strike, sym2_strike, sym1_price, sym2_price, entry_credit, entry_time, status, sym1_exit_price, sym2_exit_price, exit_cost, exit_time, exit_reason, final_pnl, commissions FROM trades WHERE trade_date LIKE ? || '%'", day)
}

func (s *Store) queryTrades(query string, args ...any) ([]TradeRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errkind.Wrap(errkind.InconsistentData, "querying trades", err)
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var tradeDate, entryTime string
		if err := rows.Scan(&t.ID, &tradeDate, &t.Sym1, &t.Sym2, &t.Sym1Strike, &t.Sym2Strike,
			&t.Sym1Price, &t.Sym2Price, &t.EntryCredit, &entryTime, &t.Status,
			&t.Sym1ExitPrice, &t.Sym2ExitPrice, &t.ExitCost, &t.ExitTime, &t.ExitReason,
			&t.FinalPnL, &t.Commissions); err != nil {
			return nil, errkind.Wrap(errkind.InconsistentData, "scanning trade row", err)
		}
		t.TradeDate, _ = time.Parse(time.RFC3339, tradeDate)
		t.EntryTime, _ = time.Parse(time.RFC3339, entryTime)
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpsertDailySummary replaces the summary row for date.
func (s *Store) UpsertDailySummary(summary DailySummary) error {
	_, err := s.db.Exec(`
INSERT INTO daily_summary (date, trades_count, winning_trades, losing_trades, total_pnl, total_commissions, net_pnl, max_drawdown)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
	trades_count=excluded.trades_count,
	winning_trades=excluded.winning_trades,
	losing_trades=excluded.losing_trades,
	total_pnl=excluded.total_pnl,
	total_commissions=excluded.total_commissions,
	net_pnl=excluded.net_pnl,
	max_drawdown=excluded.max_drawdown`,
		summary.Date.UTC().Format("2006-01-02"), summary.TradesCount, summary.WinningTrades, summary.LosingTrades,
		summary.TotalPnL, summary.TotalCommissions, summary.NetPnL, summary.MaxDrawdown)
	if err != nil {
		return errkind.Wrap(errkind.InconsistentData, "upserting daily summary", err)
	}
	return nil
}

// RunState reads the single run-state row, creating a zero-value one if
// absent.
func (s *Store) RunState() (RunState, error) {
	row := s.db.QueryRow("SELECT last_updated, is_scanning, open_positions, daily_pnl, trades_today, errors_today FROM run_state WHERE id=1")
	var rs RunState
	var lastUpdated string
	var isScanning int
	err := row.Scan(&lastUpdated, &isScanning, &rs.OpenPositions, &rs.DailyPnL, &rs.TradesToday, &rs.ErrorsToday)
	if err == sql.ErrNoRows {
		rs = RunState{LastUpdated: time.Now().UTC()}
		if err := s.SaveRunState(rs); err != nil {
			return RunState{}, err
		}
		return rs, nil
	}
	if err != nil {
		return RunState{}, errkind.Wrap(errkind.InconsistentData, "reading run state", err)
	}
	rs.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
	rs.IsScanning = isScanning != 0
	return rs, nil
}

// SaveRunState upserts the single run-state row.
func (s *Store) SaveRunState(rs RunState) error {
	isScanning := 0
	if rs.IsScanning {
		isScanning = 1
	}
	_, err := s.db.Exec(`
INSERT INTO run_state (id, last_updated, is_scanning, open_positions, daily_pnl, trades_today, errors_today)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	last_updated=excluded.last_updated,
	is_scanning=excluded.is_scanning,
	open_positions=excluded.open_positions,
	daily_pnl=excluded.daily_pnl,
	trades_today=excluded.trades_today,
	errors_today=excluded.errors_today`,
		rs.LastUpdated.UTC().Format(time.RFC3339), isScanning, rs.OpenPositions, rs.DailyPnL, rs.TradesToday, rs.ErrorsToday)
	if err != nil {
		return errkind.Wrap(errkind.InconsistentData, "saving run state", err)
	}
	return nil
}

// describeTrade renders a one-line human summary, mirroring the teacher's
// __repr__-style log helpers.
func describeTrade(t TradeRecord) string {
	return fmt.Sprintf("trade#%d %s/%s status=%s credit=%.2f", t.ID, t.Sym1, t.Sym2, t.Status, t.EntryCredit)
}
