// Package pricing resolves a single contract's executable price at a point
// in time from trade and quote series, with liquidity annotations.
package pricing

import (
	"sort"
	"time"

	"optionarb/internal/config"
	"optionarb/internal/models"
)

// PriceAt implements spec.md's single primary pricing operation: it returns
// the best available PriceQuote for (symbol, strike, right) at or before t,
// or nil if no row exists at or before t on t's trading day.
//
// trades and quotes may each be nil — PriceAt degrades gracefully; absence
// of both sources yields (nil, nil), not an error.
func PriceAt(trades []models.OptionBar, quotes []models.OptionQuoteBar, symbol string, strike float64, right models.Right, t time.Time) (*models.PriceQuote, error) {
	quoteRow, quoteFound := nearestQuoteAtOrBefore(quotes, symbol, strike, right, t)
	tradeRow, tradeFound := nearestTradeAtOrBefore(trades, symbol, strike, right, t)

	var candidateMid *float64
	var bid, ask, spread, spreadPct *float64
	if quoteFound && quoteRow.Valid() {
		mid := quoteRow.Midpoint()
		candidateMid = &mid
		b, a := quoteRow.Bid, quoteRow.Ask
		bid, ask = &b, &a
		sp := a - b
		spread = &sp
		if mid != 0 {
			spc := (sp / mid) * 100
			spreadPct = &spc
		}
	}

	var candidateTrade *float64
	var tradeVolume int64
	if tradeFound {
		c := tradeRow.Close
		candidateTrade = &c
		tradeVolume = tradeRow.Volume
	}

	var price float64
	var source models.PriceSource
	switch {
	case candidateMid != nil:
		price = *candidateMid
		source = models.SourceMidpoint
	case candidateTrade != nil:
		price = *candidateTrade
		source = models.SourceTrade
	default:
		return nil, nil
	}

	quoteExactAtT := quoteFound && quoteRow.Timestamp.Equal(t) && quoteRow.Valid()
	tradeLiquidAtOrBeforeT := tradeFound && tradeRow.Volume > 0

	isStale := false
	var warning models.Warning
	switch source {
	case models.SourceTrade:
		if tradeVolume == 0 {
			isStale = true
		}
		if !quoteFound || !quoteRow.Valid() {
			warning = models.WarningNoQuote
		}
	case models.SourceMidpoint:
		if !tradeLiquidAtOrBeforeT && !quoteExactAtT {
			isStale = true
		}
	}

	if warning == "" && spreadPct != nil && *spreadPct > config.WideSpreadThresholdPct {
		warning = models.WarningWideSpread
	}
	if warning == "" && tradeFound && tradeVolume < config.DefaultMinVolume {
		warning = models.WarningLowVolume
	}

	return &models.PriceQuote{
		Price:     price,
		Source:    source,
		Volume:    tradeVolume,
		Bid:       bid,
		Ask:       ask,
		Spread:    spread,
		SpreadPct: spreadPct,
		IsStale:   isStale,
		Warning:   warning,
	}, nil
}

// nearestTradeAtOrBefore returns the latest matching OptionBar with
// Timestamp <= t and the same trading day as t, ties breaking to the newer
// row (rows are assumed already timestamp-ascending per contract; if not,
// they are sorted locally).
func nearestTradeAtOrBefore(rows []models.OptionBar, symbol string, strike float64, right models.Right, t time.Time) (models.OptionBar, bool) {
	var matched []models.OptionBar
	for _, r := range rows {
		if r.Symbol == symbol && r.Strike == strike && r.Right == right && sameTradingDay(r.Timestamp, t) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return models.OptionBar{}, false
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.Before(matched[j].Timestamp) })

	idx := sort.Search(len(matched), func(i int) bool { return matched[i].Timestamp.After(t) })
	if idx == 0 {
		return models.OptionBar{}, false
	}
	return matched[idx-1], true
}

func nearestQuoteAtOrBefore(rows []models.OptionQuoteBar, symbol string, strike float64, right models.Right, t time.Time) (models.OptionQuoteBar, bool) {
	var matched []models.OptionQuoteBar
	for _, r := range rows {
		if r.Symbol == symbol && r.Strike == strike && r.Right == right && sameTradingDay(r.Timestamp, t) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return models.OptionQuoteBar{}, false
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.Before(matched[j].Timestamp) })

	idx := sort.Search(len(matched), func(i int) bool { return matched[i].Timestamp.After(t) })
	if idx == 0 {
		return models.OptionQuoteBar{}, false
	}
	return matched[idx-1], true
}

// sameTradingDay reports whether a and b fall on the same UTC calendar day.
// Nearest-at-or-before lookups must never cross into a prior trading day.
func sameTradingDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
