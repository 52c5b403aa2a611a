package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func readRows(path string) ([][]string, error) {
	if isSpreadsheet(path) {
		return readSheet(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// readSheet returns the rows of the first sheet. Cells come back raw so date
// cells arrive as serials rather than in the workbook's display format.
func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// Write stores both tables. Each file is replaced atomically so a failed
// write never leaves a truncated snapshot behind.
func Write(p Paths, quotes types.QuoteTable, dividends types.DividendTable) error {
	if p.Quotes != "" {
		if err := WriteQuotes(p.Quotes, quotes); err != nil {
			return err
		}
	}
	if p.Dividends != "" {
		if err := WriteDividends(p.Dividends, dividends); err != nil {
			return err
		}
	}
	return nil
}

// WriteQuotes stores a quote table with a date,ticker,price header.
func WriteQuotes(path string, t types.QuoteTable) error {
	rows := make([][]any, 0, t.Len())
	for _, r := range t.Rows() {
		rows = append(rows, []any{r.Date, r.Ticker, r.Close.InexactFloat64()})
	}
	return writeRows(path, []string{"date", "ticker", "price"}, rows)
}

// WriteDividends stores a dividend table with a date,ticker,amount header.
func WriteDividends(path string, t types.DividendTable) error {
	rows := make([][]any, 0, t.Len())
	for _, r := range t.Rows() {
		rows = append(rows, []any{r.Date, r.Ticker, r.Amount.InexactFloat64()})
	}
	return writeRows(path, []string{"date", "ticker", "amount"}, rows)
}

func writeRows(path string, header []string, rows [][]any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if isSpreadsheet(path) {
		err = writeSheet(tmp, header, rows)
	} else {
		err = writeCSV(tmp, header, rows)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

func writeCSV(w io.Writer, header []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			rec[i] = fmt.Sprint(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSheet(w io.Writer, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if d, ok := v.(date.Date); ok {
				v = d.String()
			}
			cells[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
