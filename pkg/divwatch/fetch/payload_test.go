package fetch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
)

// Timestamps below are 2024-03-04, -05 and -06 at 12:00 UTC.
const flatBody = `{"chart":{"result":[{
	"meta":{"symbol":"ITSA4.SA"},
	"timestamp":[1709557200,1709643600,1709730000],
	"indicators":{"quote":[{"close":[10.123,null,10.456]}]}
}],"error":null}}`

const layeredResultsBody = `{"chart":{"result":[
	{"meta":{"symbol":"AAA"},"timestamp":[1709557200],"indicators":{"quote":[{"close":[1.0]}]}},
	{"meta":{"symbol":"BBB"},"timestamp":[1709557200,1709643600],"indicators":{"quote":[{"close":[2.0,2.5]}]}}
],"error":null}}`

const layeredColumnsBody = `{"chart":{"result":[{
	"timestamp":[1709557200,1709643600],
	"indicators":{"quote":[{"close":{"AAA":[1.0,1.1],"BBB":[7.0,7.7]}}]}
}],"error":null}}`

const dividendsBody = `{"chart":{"result":[{
	"meta":{"symbol":"TAEE11.SA"},
	"timestamp":[1709557200],
	"indicators":{"quote":[{"close":[35.0]}]},
	"events":{"dividends":{
		"1709557200":{"amount":0.42,"date":1709557200},
		"1709643600":{"amount":0.0,"date":1709643600},
		"1709730000":{"amount":0.15}
	}}
}],"error":null}}`

func TestResolveFlat(t *testing.T) {
	p, err := Resolve([]byte(flatBody), "ITSA4.SA", false)
	require.NoError(t, err)
	require.IsType(t, FlatPayload{}, p)

	recs, err := DecodeQuotes(p, "ITSA4.SA", time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2, "null close dropped")
	assert.Equal(t, date.New(2024, 3, 4), recs[0].Date)
	assert.True(t, recs[0].Close.Equal(decimal.RequireFromString("10.12")), "rounded to cents")
	assert.Equal(t, "ITSA4.SA", recs[1].Ticker)
	assert.True(t, recs[1].Close.Equal(decimal.RequireFromString("10.46")))
}

func TestResolveLayeredResults(t *testing.T) {
	p, err := Resolve([]byte(layeredResultsBody), "bbb", false)
	require.NoError(t, err)
	require.IsType(t, LayeredPayload{}, p)

	recs, err := DecodeQuotes(p, "BBB", time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[1].Close.Equal(decimal.RequireFromString("2.5")))

	_, err = Resolve([]byte(layeredResultsBody), "CCC", false)
	assert.Error(t, err)
}

func TestResolveLayeredColumns(t *testing.T) {
	p, err := Resolve([]byte(layeredColumnsBody), "BBB", false)
	require.NoError(t, err)
	require.IsType(t, LayeredPayload{}, p)

	recs, err := DecodeQuotes(p, "BBB", time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Close.Equal(decimal.NewFromInt(7)))
}

func TestResolveRejects(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"chart":`,
		"provider error": `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
		"empty result":   `{"chart":{"result":[],"error":null}}`,
		"other symbol":   `{"chart":{"result":[{"meta":{"symbol":"XYZ"},"timestamp":[1],"indicators":{"quote":[{"close":[1]}]}}]}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve([]byte(body), "AAA", false)
			assert.Error(t, err)
		})
	}
}

func TestDecodeQuotesEmptySeries(t *testing.T) {
	p, err := Resolve([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAA"},"indicators":{"quote":[{}]}}]}}`), "AAA", false)
	require.NoError(t, err)
	_, err = DecodeQuotes(p, "AAA", time.UTC)
	assert.Error(t, err)
}

func TestDecodeDividends(t *testing.T) {
	p, err := Resolve([]byte(dividendsBody), "TAEE11.SA", true)
	require.NoError(t, err)
	require.IsType(t, FlatPayload{}, p)

	recs, err := DecodeDividends(p, "TAEE11.SA", time.UTC)
	require.NoError(t, err)
	require.Len(t, recs, 2, "zero amount is not an event")

	byDate := map[date.Date]decimal.Decimal{}
	for _, r := range recs {
		byDate[r.Date] = r.Amount
	}
	assert.True(t, byDate[date.New(2024, 3, 4)].Equal(decimal.RequireFromString("0.42")))
	assert.True(t, byDate[date.New(2024, 3, 6)].Equal(decimal.RequireFromString("0.15")), "date taken from key when missing")
}

func TestNoDividendsSection(t *testing.T) {
	p, err := Resolve([]byte(flatBody), "ITSA4.SA", true)
	require.NoError(t, err)
	assert.Equal(t, NoDividendsPayload{Symbol: "ITSA4.SA"}, p)

	recs, err := DecodeDividends(p, "ITSA4.SA", time.UTC)
	assert.NoError(t, err)
	assert.Empty(t, recs)
}
