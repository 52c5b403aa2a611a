package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Origin   string        `json:"origin"`
	Cached   bool          `json:"cached"`
	Error    string        `json:"error,omitempty"`
	Sections []jsonSection `json:"sections"`
}

type jsonSection struct {
	Name     string           `json:"name"`
	Currency string           `json:"currency,omitempty"`
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
}

// JSONRenderer writes numbers as exact decimal strings and unavailable
// values as null.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, rep Report, opts RenderOptions) error {
	out := jsonModel{Origin: rep.Origin, Cached: rep.Cached, Sections: make([]jsonSection, 0, len(rep.Sections))}
	if rep.Err != nil {
		out.Error = rep.Err.Error()
	}
	for _, sec := range rep.Sections {
		js := jsonSection{Name: sec.Name, Currency: sec.Currency, Columns: sec.Columns, Rows: make([]map[string]any, 0, len(sec.Rows))}
		for _, row := range sec.Rows {
			m := make(map[string]any, len(sec.Columns))
			for _, c := range sec.Columns {
				m[c] = jsonValue(columns.Lookup(c), columns.Resolve(c, row))
			}
			js.Rows = append(js.Rows, m)
		}
		out.Sections = append(out.Sections, js)
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func jsonValue(def columns.Def, v columns.Value) any {
	switch def.Kind {
	case columns.Money, columns.Percent:
		return v.Num
	}
	if v.Str == "" {
		return nil
	}
	return v.Str
}
