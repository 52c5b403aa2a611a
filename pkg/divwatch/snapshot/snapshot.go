// Package snapshot reads and writes the last-known-good quote and dividend
// tables kept on disk as CSV or XLSX files.
package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// ErrSnapshot is wrapped by every read failure.
var ErrSnapshot = errors.New("snapshot")

// Paths locates the two snapshot files. The format of each follows its
// extension: .xlsx/.xlsm are spreadsheets, anything else is CSV.
type Paths struct {
	Quotes    string `mapstructure:"quotes"`
	Dividends string `mapstructure:"dividends"`
}

// IsZero reports whether no quotes snapshot is configured.
func (p Paths) IsZero() bool { return p.Quotes == "" }

// Read loads both tables. A snapshot without quotes is a failure; an unset
// dividends path yields an empty dividend table.
func Read(p Paths) (types.QuoteTable, types.DividendTable, error) {
	if p.IsZero() {
		return types.QuoteTable{}, types.DividendTable{}, fmt.Errorf("%w: no quotes file configured", ErrSnapshot)
	}
	quotes, err := ReadQuotes(p.Quotes)
	if err != nil {
		return types.QuoteTable{}, types.DividendTable{}, err
	}
	if quotes.IsEmpty() {
		return types.QuoteTable{}, types.DividendTable{}, fmt.Errorf("%w: %s: no quote rows", ErrSnapshot, p.Quotes)
	}
	var divs types.DividendTable
	if p.Dividends != "" {
		if divs, err = ReadDividends(p.Dividends); err != nil {
			return types.QuoteTable{}, types.DividendTable{}, err
		}
	}
	return quotes, divs, nil
}

// ReadQuotes loads a quote table.
func ReadQuotes(path string) (types.QuoteTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return types.QuoteTable{}, fail(path, err)
	}
	var recs []types.QuoteRecord
	err = parseRows(rows, priceColumns, func(d date.Date, ticker string, v decimal.Decimal) {
		recs = append(recs, types.QuoteRecord{Date: d, Ticker: ticker, Close: v.Round(2)})
	})
	if err != nil {
		return types.QuoteTable{}, fail(path, err)
	}
	return types.NewTable(recs), nil
}

// ReadDividends loads a dividend table. Rows with a non-positive amount are
// not events and are skipped.
func ReadDividends(path string) (types.DividendTable, error) {
	rows, err := readRows(path)
	if err != nil {
		return types.DividendTable{}, fail(path, err)
	}
	var recs []types.DividendRecord
	err = parseRows(rows, amountColumns, func(d date.Date, ticker string, v decimal.Decimal) {
		if v.IsPositive() {
			recs = append(recs, types.DividendRecord{Date: d, Ticker: ticker, Amount: v})
		}
	})
	if err != nil {
		return types.DividendTable{}, fail(path, err)
	}
	return types.NewTable(recs), nil
}

func fail(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSnapshot, path, err)
}

var (
	dateColumns   = []string{"date", "data"}
	tickerColumns = []string{"ticker", "symbol", "sym", "ativo"}
	priceColumns  = []string{"price", "close", "close_price", "valor_cotação", "valor_cotacao", "cotacao"}
	amountColumns = []string{"amount", "dividend", "value", "dividendo", "valor_dividendo"}
)

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// parseRows maps the header row onto the date, ticker and value columns and
// calls emit for every non-blank data row.
func parseRows(rows [][]string, valueColumns []string, emit func(date.Date, string, decimal.Decimal)) error {
	if len(rows) == 0 {
		return errors.New("empty file")
	}
	header := rows[0]
	di, ti, vi := find(header, dateColumns), find(header, tickerColumns), find(header, valueColumns)
	switch {
	case di < 0:
		return fmt.Errorf("missing date column in header %v", header)
	case ti < 0:
		return fmt.Errorf("missing ticker column in header %v", header)
	case vi < 0:
		return fmt.Errorf("missing %s column in header %v", valueColumns[0], header)
	}

	for n, row := range rows[1:] {
		line := n + 2
		if blank(row) {
			continue
		}
		d, err := parseDate(cell(row, di))
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		ticker := types.Symbol(cell(row, ti))
		if ticker == "" {
			return fmt.Errorf("row %d: empty ticker", line)
		}
		raw := cell(row, vi)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := parseDecimal(raw)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		emit(d, ticker, v)
	}
	return nil
}

func find(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts the textual layouts of date.Parse and spreadsheet date
// serials.
func parseDate(s string) (date.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := date.Parse(s); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q", s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date serial %q: %w", s, err)
	}
	return date.Of(t), nil
}

// parseDecimal accepts "10.5" and the comma-decimal "10,5".
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
