package main

import (
	"time"

	"optionarb/internal/dataloader"
	"optionarb/internal/journal"
)

// parseDateID parses a dataloader.DateID (yyyymmdd) into a time.Time.
func parseDateID(date dataloader.DateID) (time.Time, error) {
	return time.Parse("20060102", string(date))
}

// recordTrade persists a newly built position to the journal, then refreshes
// that date's daily summary. A nil app.Journal (database unavailable at
// startup) makes this a no-op: the journal is a supplement, not a dependency
// the analytical commands require to function.
func (a *App) recordTrade(date time.Time, sym1, sym2 string, sym1Strike, sym2Strike, sym1Price, sym2Price, credit float64, entryTime time.Time) {
	if a.Journal == nil {
		return
	}

	if _, err := a.Journal.InsertTrade(journal.TradeRecord{
		TradeDate:   date,
		Sym1:        sym1,
		Sym2:        sym2,
		Sym1Strike:  sym1Strike,
		Sym2Strike:  sym2Strike,
		Sym1Price:   sym1Price,
		Sym2Price:   sym2Price,
		EntryCredit: credit,
		EntryTime:   entryTime,
		Status:      "ACTIVE",
	}); err != nil {
		a.Logger.Warn().Err(err).Msg("journal insert failed")
		return
	}

	trades, err := a.Journal.TradesOnDate(date)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("journal query failed")
		return
	}
	summary := journal.DailySummary{Date: date, TradesCount: len(trades)}
	for _, t := range trades {
		summary.TotalPnL += t.EntryCredit
	}
	summary.NetPnL = summary.TotalPnL - summary.TotalCommissions
	if err := a.Journal.UpsertDailySummary(summary); err != nil {
		a.Logger.Warn().Err(err).Msg("journal summary upsert failed")
	}
}
