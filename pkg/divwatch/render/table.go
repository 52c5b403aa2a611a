package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, rep Report, opts RenderOptions) error {
	if rep.Origin == "none" {
		msg := "no data available"
		if rep.Err != nil {
			msg += ": " + rep.Err.Error()
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}

	multi := len(rep.Sections) > 1
	for si, sec := range rep.Sections {
		// Print portfolio name as a standalone line spanning full width
		if multi && strings.TrimSpace(sec.Name) != "" {
			fmt.Fprintln(w, text.Bold.Sprint(strings.ToUpper(sec.Name)))
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleColoredDark)
		if !opts.Color {
			tw.SetStyle(table.StyleLight)
		}
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateRows = false
		tw.Style().Options.SeparateColumns = false

		defs := make([]columns.Def, len(sec.Columns))
		hdr := make(table.Row, len(sec.Columns))
		for i, c := range sec.Columns {
			defs[i] = columns.Lookup(c)
			hdr[i] = strings.ToUpper(defs[i].Header)
		}
		tw.AppendHeader(hdr)

		// Wrap text to MaxColWidth (default 40); numbers align right.
		maxWidth := opts.MaxColWidth
		if maxWidth <= 0 {
			maxWidth = 40
		}
		cfgs := make([]table.ColumnConfig, 0, len(defs))
		for i, d := range defs {
			cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
			switch d.Kind {
			case columns.Money, columns.Percent:
				cfg.Align = text.AlignRight
				cfg.AlignHeader = text.AlignRight
			case columns.Trend:
				cfg.Align = text.AlignCenter
			}
			cfgs = append(cfgs, cfg)
		}
		if len(cfgs) > 0 {
			tw.SetColumnConfigs(cfgs)
		}

		for _, row := range sec.Rows {
			out := make(table.Row, len(defs))
			for i, d := range defs {
				v := columns.Resolve(d.Key, row)
				s := Format(d, v, sec.Currency)
				if opts.Color {
					s = colorize(s, v.Sign)
				}
				out[i] = s
			}
			tw.AppendRow(out)
		}

		if si == len(rep.Sections)-1 {
			tw.SetCaption("%s", caption(rep))
		}
		tw.Render()
		if si < len(rep.Sections)-1 {
			// blank line between tables
			fmt.Fprintln(w)
		}
	}
	return nil
}

func colorize(s string, sign int) string {
	switch {
	case sign > 0:
		return text.Colors{text.FgGreen}.Sprint(s)
	case sign < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	}
	return s
}

func caption(rep Report) string {
	c := "source: " + rep.Origin
	if rep.Cached {
		c += " (cached)"
	}
	return c
}
