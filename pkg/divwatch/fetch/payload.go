package fetch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/komsit37/divwatch/pkg/divwatch/date"
	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// The chart endpoint has shipped several layouts over time. A response is
// narrowed to the requested ticker once, here, into one of these payloads.
type Payload interface{ payload() }

// FlatPayload is a response with a single series.
type FlatPayload struct {
	Series gjson.Result
	Closes gjson.Result
}

// LayeredPayload is a response carrying several symbols, either as several
// results or as close columns keyed by symbol. Series and Closes are those of
// Symbol.
type LayeredPayload struct {
	Symbol string
	Series gjson.Result
	Closes gjson.Result
}

// NoDividendsPayload is a series without any dividend section.
type NoDividendsPayload struct {
	Symbol string
}

func (FlatPayload) payload()        {}
func (LayeredPayload) payload()     {}
func (NoDividendsPayload) payload() {}

var (
	errMalformed = errors.New("malformed response")
	errNoSeries  = errors.New("no series in response")
)

// Resolve narrows a chart response body to ticker. With dividends set, a
// series lacking dividend events resolves to NoDividendsPayload.
func Resolve(body []byte, ticker string, dividends bool) (Payload, error) {
	if !gjson.ValidBytes(body) {
		return nil, errMalformed
	}
	root := gjson.ParseBytes(body)
	if e := root.Get("chart.error"); e.Exists() && e.Type != gjson.Null {
		return nil, fmt.Errorf("provider error: %s", firstNonEmpty(e.Get("description").String(), e.Raw))
	}
	results := root.Get("chart.result")
	if !results.IsArray() || len(results.Array()) == 0 {
		return nil, errNoSeries
	}

	var p Payload
	all := results.Array()
	if len(all) == 1 {
		series := all[0]
		if sym := series.Get("meta.symbol").String(); sym != "" && !sameSymbol(sym, ticker) {
			return nil, fmt.Errorf("response is for %s", sym)
		}
		closes := series.Get("indicators.quote.0.close")
		if closes.IsObject() {
			col, ok := pickKey(closes, ticker)
			if !ok {
				return nil, fmt.Errorf("%w for %s", errNoSeries, ticker)
			}
			p = LayeredPayload{Symbol: ticker, Series: series, Closes: col}
		} else {
			p = FlatPayload{Series: series, Closes: closes}
		}
	} else {
		var found bool
		for _, series := range all {
			if sameSymbol(series.Get("meta.symbol").String(), ticker) {
				p = LayeredPayload{Symbol: ticker, Series: series, Closes: series.Get("indicators.quote.0.close")}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w for %s", errNoSeries, ticker)
		}
	}

	if dividends && !seriesOf(p).Get("events.dividends").Exists() {
		return NoDividendsPayload{Symbol: ticker}, nil
	}
	return p, nil
}

func seriesOf(p Payload) gjson.Result {
	switch v := p.(type) {
	case FlatPayload:
		return v.Series
	case LayeredPayload:
		return v.Series
	}
	return gjson.Result{}
}

func closesOf(p Payload) gjson.Result {
	switch v := p.(type) {
	case FlatPayload:
		return v.Closes
	case LayeredPayload:
		return v.Closes
	}
	return gjson.Result{}
}

// DecodeQuotes turns a payload into quote records. Null closes are dropped and
// prices are rounded to cents.
func DecodeQuotes(p Payload, ticker string, loc *time.Location) ([]types.QuoteRecord, error) {
	if _, ok := p.(NoDividendsPayload); ok {
		return nil, errNoSeries
	}
	stamps := seriesOf(p).Get("timestamp").Array()
	closes := closesOf(p).Array()
	if len(stamps) == 0 || len(closes) == 0 {
		return nil, fmt.Errorf("%w for %s", errNoSeries, ticker)
	}
	n := min(len(stamps), len(closes))
	out := make([]types.QuoteRecord, 0, n)
	for i := 0; i < n; i++ {
		c := closes[i]
		if c.Type != gjson.Number {
			continue
		}
		out = append(out, types.QuoteRecord{
			Date:   date.FromUnix(stamps[i].Int(), loc),
			Ticker: ticker,
			Close:  decimal.NewFromFloat(c.Float()).Round(2),
		})
	}
	return out, nil
}

// DecodeDividends turns a payload into dividend records. The provider keys
// events by timestamp; entries without a positive amount are not events.
func DecodeDividends(p Payload, ticker string, loc *time.Location) ([]types.DividendRecord, error) {
	if _, ok := p.(NoDividendsPayload); ok {
		return nil, nil
	}
	var out []types.DividendRecord
	seriesOf(p).Get("events.dividends").ForEach(func(key, ev gjson.Result) bool {
		amount := ev.Get("amount")
		if amount.Type != gjson.Number || amount.Float() <= 0 {
			return true
		}
		sec := ev.Get("date").Int()
		if sec == 0 {
			if k, err := strconv.ParseInt(key.String(), 10, 64); err == nil {
				sec = k
			}
		}
		if sec == 0 {
			return true
		}
		out = append(out, types.DividendRecord{
			Date:   date.FromUnix(sec, loc),
			Ticker: ticker,
			Amount: decimal.NewFromFloat(amount.Float()),
		})
		return true
	})
	return out, nil
}

func pickKey(obj gjson.Result, ticker string) (gjson.Result, bool) {
	var found gjson.Result
	var ok bool
	obj.ForEach(func(k, v gjson.Result) bool {
		if sameSymbol(k.String(), ticker) {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

func sameSymbol(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
