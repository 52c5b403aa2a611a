package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadQuotesCSV(t *testing.T) {
	path := writeFile(t, "quotes.csv", "Date,Ticker,valor_cotação\n"+
		"2024-03-05,AAA,10.456\n"+
		"04/03/2024,AAA,\"10,10\"\n"+
		",,\n"+
		"2024-03-04,BBB,7\n")

	q, err := ReadQuotes(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, q.Tickers())

	aaa := q.For("AAA")
	require.Len(t, aaa, 2)
	assert.Equal(t, date.New(2024, 3, 4), aaa[0].Date, "sorted by date")
	assert.True(t, aaa[0].Close.Equal(decimal.RequireFromString("10.10")))
	assert.True(t, aaa[1].Close.Equal(decimal.RequireFromString("10.46")), "rounded to cents")
}

func TestReadDividendsSkipsNonPositive(t *testing.T) {
	path := writeFile(t, "divs.csv", "date,ticker,dividendo\n"+
		"2024-01-10,AAA,0.50\n"+
		"2024-02-10,AAA,0\n"+
		"2024-03-10,AAA,-1\n")

	d, err := ReadDividends(path)
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	assert.True(t, d.Rows()[0].Amount.Equal(decimal.RequireFromString("0.5")))
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"missing header column": "date,ticker\n2024-01-01,AAA\n",
		"bad date":              "date,ticker,price\nyesterday,AAA,1\n",
		"bad number":            "date,ticker,price\n2024-01-01,AAA,abc\n",
		"empty ticker":          "date,ticker,price\n2024-01-01,,1\n",
		"empty file":            "",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadQuotes(writeFile(t, "q.csv", content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSnapshot))
		})
	}

	_, err := ReadQuotes(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrSnapshot)
}

func TestReadRequiresQuotes(t *testing.T) {
	_, _, err := Read(Paths{})
	assert.ErrorIs(t, err, ErrSnapshot)

	empty := writeFile(t, "q.csv", "date,ticker,price\n")
	_, _, err = Read(Paths{Quotes: empty})
	assert.ErrorIs(t, err, ErrSnapshot, "a header alone is not a snapshot")

	quotes := writeFile(t, "q2.csv", "date,ticker,price\n2024-01-01,AAA,1\n")
	q, d, err := Read(Paths{Quotes: quotes})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
	assert.True(t, d.IsEmpty())

	_, _, err = Read(Paths{Quotes: quotes, Dividends: filepath.Join(t.TempDir(), "nope.csv")})
	assert.ErrorIs(t, err, ErrSnapshot)
}

func sampleTables() (types.QuoteTable, types.DividendTable) {
	q := types.NewTable([]types.QuoteRecord{
		{Date: date.New(2024, 3, 4), Ticker: "AAA", Close: decimal.RequireFromString("10.12")},
		{Date: date.New(2024, 3, 5), Ticker: "AAA", Close: decimal.RequireFromString("10.46")},
		{Date: date.New(2024, 3, 4), Ticker: "BBB", Close: decimal.RequireFromString("7")},
	})
	d := types.NewTable([]types.DividendRecord{
		{Date: date.New(2024, 2, 1), Ticker: "AAA", Amount: decimal.RequireFromString("0.25")},
	})
	return q, d
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			p := Paths{
				Quotes:    filepath.Join(dir, "sub", "quotes"+ext),
				Dividends: filepath.Join(dir, "sub", "dividends"+ext),
			}
			q, d := sampleTables()
			require.NoError(t, Write(p, q, d))

			gotQ, gotD, err := Read(p)
			require.NoError(t, err)
			assert.Equal(t, q.Len(), gotQ.Len())
			for i, r := range gotQ.Rows() {
				want := q.Rows()[i]
				assert.Equal(t, want.Date, r.Date)
				assert.Equal(t, want.Ticker, r.Ticker)
				assert.True(t, want.Close.Equal(r.Close), "%s != %s", want.Close, r.Close)
			}
			require.Equal(t, 1, gotD.Len())
			assert.True(t, gotD.Rows()[0].Amount.Equal(decimal.RequireFromString("0.25")))

			entries, err := os.ReadDir(filepath.Join(dir, "sub"))
			require.NoError(t, err)
			assert.Len(t, entries, 2, "no temp files left behind")
		})
	}
}

func TestReadSheetDateSerials(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "ticker", "close"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{45355, "AAA", 12.5}))
	path := filepath.Join(t.TempDir(), "q.xlsx")
	require.NoError(t, f.SaveAs(path))

	q, err := ReadQuotes(path)
	require.NoError(t, err)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, date.New(2024, 3, 4), q.Rows()[0].Date)
	assert.True(t, q.Rows()[0].Close.Equal(decimal.RequireFromString("12.5")))
}
