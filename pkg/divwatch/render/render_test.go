package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleReport() Report {
	aaa := types.AssetSummary{
		Ticker:             "AAA",
		AveragePrice:       nd("10"),
		CurrentPrice:       nd("12"),
		Dividends12M:       nd("1"),
		LatestDividend:     nd("1"),
		Trend:              types.TrendFlat,
		AverageDividend12M: nd("1"),
		DividendYield:      nd("8.33"),
		YieldOnCost:        nd("10"),
	}
	bbb := types.Placeholder("BBB", decimal.NullDecimal{})
	return Report{
		Origin: "remote",
		Sections: []Section{{
			Name:     "main",
			Currency: "BRL",
			Columns:  columns.DefaultColumns,
			Rows:     []columns.Row{{Summary: aaa}, {Summary: bbb}},
		}},
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, money.New(1234, "BRL").Display(), Money(decimal.RequireFromString("12.344"), "BRL"))
	assert.Equal(t, money.New(1235, "USD").Display(), Money(decimal.RequireFromString("12.345"), "USD"))
	assert.Equal(t, "XXZ 1.50", Money(decimal.RequireFromString("1.5"), "XXZ"))
	assert.Equal(t, "1.50", Money(decimal.RequireFromString("1.5"), ""))
}

func TestFormat(t *testing.T) {
	pct := columns.Lookup("dy")
	assert.Equal(t, "8.33%", Format(pct, columns.Value{Num: nd("8.33")}, "BRL"))
	assert.Equal(t, Placeholder, Format(pct, columns.Value{}, "BRL"))
	assert.Equal(t, Placeholder, Format(columns.Lookup("price"), columns.Value{}, "BRL"))
	assert.Equal(t, "▲", Format(columns.Lookup("trend"), columns.Value{Str: "up"}, ""))
	assert.Equal(t, "", Format(columns.Lookup("trend"), columns.Value{Str: "none"}, ""))
}

func TestTableRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableRenderer().Render(&buf, sampleReport(), RenderOptions{}))
	out := buf.String()
	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "AAA")
	assert.Contains(t, out, "BBB")
	assert.Contains(t, out, "8.33%")
	assert.Contains(t, out, "10.00%")
	assert.Contains(t, out, Money(decimal.NewFromInt(12), "BRL"))
	assert.Contains(t, out, "source: remote")
}

func TestTableRendererNoData(t *testing.T) {
	var buf bytes.Buffer
	rep := Report{Origin: "none", Err: errors.New("offline")}
	require.NoError(t, NewTableRenderer().Render(&buf, rep, RenderOptions{}))
	assert.Equal(t, "no data available: offline\n", buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, sampleReport(), RenderOptions{}))

	var got struct {
		Origin   string `json:"origin"`
		Sections []struct {
			Name string           `json:"name"`
			Rows []map[string]any `json:"rows"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "remote", got.Origin)
	require.Len(t, got.Sections, 1)
	rows := got.Sections[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "8.33", rows[0]["dy"])
	assert.Equal(t, "flat", rows[0]["trend"])
	assert.Nil(t, rows[1]["dy"], "unavailable is null, not zero")
	assert.Equal(t, "none", rows[1]["trend"])
}

func TestSymsRenderer(t *testing.T) {
	rep := sampleReport()
	rep.Sections = append(rep.Sections, rep.Sections[0])
	var buf bytes.Buffer
	require.NoError(t, NewSymsRenderer().Render(&buf, rep, RenderOptions{}))
	assert.Equal(t, "AAA,BBB\n", buf.String())
}
