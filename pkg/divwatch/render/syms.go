package render

import (
	"fmt"
	"io"
	"strings"
)

// symsRenderer prints all tickers in a single comma-separated line.
type symsRenderer struct{}

func NewSymsRenderer() Renderer {
	return symsRenderer{}
}

func (symsRenderer) Render(w io.Writer, rep Report, _ RenderOptions) error {
	seen := map[string]bool{}
	symbols := make([]string, 0)
	for _, sec := range rep.Sections {
		for _, row := range sec.Rows {
			sym := strings.TrimSpace(row.Summary.Ticker)
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
