package source

import (
	"context"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Source loads portfolios from a specification (e.g., a file or directory path).
type Source interface {
	Load(ctx context.Context, spec any) ([]types.Portfolio, error)
}
