package render

import (
	"io"

	"github.com/komsit37/divwatch/pkg/divwatch/columns"
)

// Section is one portfolio's table.
type Section struct {
	Name     string
	Currency string
	Columns  []string
	Rows     []columns.Row
}

// Report is what a summary run renders.
type Report struct {
	// Origin says where the data came from ("remote", "snapshot", "none").
	Origin string
	Cached bool
	// Err explains why nothing could be loaded.
	Err      error
	Sections []Section
}

// Renderer renders a report to an output writer.
type Renderer interface {
	Render(w io.Writer, r Report, opts RenderOptions) error
}

type RenderOptions struct {
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}
