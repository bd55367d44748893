// Package dataloader reads the per-trading-date CSV file families into
// typed series. It is the only package that touches the filesystem on the
// core's read path.
package dataloader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"optionarb/internal/errkind"
	"optionarb/internal/models"
)

const (
	underlyingPrefix = "underlying_prices_"
	optionsPrefix    = "options_data_"
	bidaskPrefix     = "options_bidask_"
	csvSuffix        = ".csv"
)

// DateID is a trading date in yyyymmdd form, e.g. "20260213".
type DateID string

// ListDates returns the trading dates with an underlying-prices file under
// root, ordered descending (most recent first).
func ListDates(root string) ([]DateID, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errkind.NotFoundErr("data directory not found: " + root)
		}
		return nil, errkind.Wrap(errkind.InconsistentData, "reading data directory", err)
	}

	var dates []DateID
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, underlyingPrefix) || !strings.HasSuffix(name, csvSuffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, underlyingPrefix), csvSuffix)
		dates = append(dates, DateID(raw))
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i] > dates[j] })
	return dates, nil
}

// underlyingRow is the CSV row shape of underlying_prices_{date}.csv.
type underlyingRow struct {
	Symbol string  `csv:"symbol"`
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

// optionRow is the CSV row shape of options_data_{date}.csv.
type optionRow struct {
	Symbol string  `csv:"symbol"`
	Strike float64 `csv:"strike"`
	Right  string  `csv:"right"`
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

// bidaskRow is the CSV row shape of options_bidask_{date}.csv.
type bidaskRow struct {
	Symbol   string  `csv:"symbol"`
	Strike   float64 `csv:"strike"`
	Right    string  `csv:"right"`
	Time     string  `csv:"time"`
	Bid      float64 `csv:"bid"`
	Ask      float64 `csv:"ask"`
	Midpoint float64 `csv:"midpoint"`
}

func parseUTC(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// LoadUnderlying loads underlying_prices_{date}.csv. A missing file is
// not_found; every timestamp is normalized to UTC.
func LoadUnderlying(root string, date DateID) ([]models.UnderlyingBar, error) {
	path := filepath.Join(root, underlyingPrefix+string(date)+csvSuffix)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errkind.NotFoundErr("underlying price data not found: " + path)
		}
		return nil, errkind.Wrap(errkind.InconsistentData, "opening underlying file", err)
	}
	defer f.Close()

	var rows []underlyingRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, errkind.Wrap(errkind.InconsistentData, "parsing underlying csv", err)
	}

	bars := make([]models.UnderlyingBar, 0, len(rows))
	for _, r := range rows {
		t, err := parseUTC(r.Time)
		if err != nil {
			return nil, errkind.Wrap(errkind.InconsistentData, "parsing underlying timestamp", err)
		}
		bars = append(bars, models.UnderlyingBar{
			Symbol:    r.Symbol,
			Timestamp: t,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return bars, nil
}

// LoadOptionTrades loads options_data_{date}.csv. A missing file returns
// (nil, nil): absent option trades degrade, not fail, per the pricing layer.
func LoadOptionTrades(root string, date DateID) ([]models.OptionBar, error) {
	path := filepath.Join(root, optionsPrefix+string(date)+csvSuffix)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errkind.Wrap(errkind.InconsistentData, "opening options trades file", err)
	}
	defer f.Close()

	var rows []optionRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, errkind.Wrap(errkind.InconsistentData, "parsing options trades csv", err)
	}

	bars := make([]models.OptionBar, 0, len(rows))
	for _, r := range rows {
		t, err := parseUTC(r.Time)
		if err != nil {
			return nil, errkind.Wrap(errkind.InconsistentData, "parsing option trade timestamp", err)
		}
		if r.Volume < 0 {
			return nil, errkind.InconsistentDataErr("negative trade volume")
		}
		bars = append(bars, models.OptionBar{
			Symbol:    r.Symbol,
			Strike:    r.Strike,
			Right:     models.Right(r.Right),
			Timestamp: t,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return bars, nil
}

// LoadOptionQuotes loads options_bidask_{date}.csv. A missing file returns
// (nil, nil).
func LoadOptionQuotes(root string, date DateID) ([]models.OptionQuoteBar, error) {
	path := filepath.Join(root, bidaskPrefix+string(date)+csvSuffix)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errkind.Wrap(errkind.InconsistentData, "opening options bidask file", err)
	}
	defer f.Close()

	var rows []bidaskRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, errkind.Wrap(errkind.InconsistentData, "parsing options bidask csv", err)
	}

	bars := make([]models.OptionQuoteBar, 0, len(rows))
	for _, r := range rows {
		t, err := parseUTC(r.Time)
		if err != nil {
			return nil, errkind.Wrap(errkind.InconsistentData, "parsing option quote timestamp", err)
		}
		if r.Bid > r.Ask && r.Bid > 0 && r.Ask > 0 {
			return nil, errkind.InconsistentDataErr("bid greater than ask")
		}
		bars = append(bars, models.OptionQuoteBar{
			Symbol:    r.Symbol,
			Strike:    r.Strike,
			Right:     models.Right(r.Right),
			Timestamp: t,
			Bid:       r.Bid,
			Ask:       r.Ask,
		})
	}
	return bars, nil
}

// GetSymbolFrames splits an underlying series into sym1's and sym2's bars,
// each ordered by timestamp ascending.
func GetSymbolFrames(bars []models.UnderlyingBar, sym1, sym2 string) ([]models.UnderlyingBar, []models.UnderlyingBar) {
	var s1, s2 []models.UnderlyingBar
	for _, b := range bars {
		switch b.Symbol {
		case sym1:
			s1 = append(s1, b)
		case sym2:
			s2 = append(s2, b)
		}
	}
	sortBars := func(bs []models.UnderlyingBar) {
		sort.Slice(bs, func(i, j int) bool { return bs[i].Timestamp.Before(bs[j].Timestamp) })
	}
	sortBars(s1)
	sortBars(s2)
	return s1, s2
}
