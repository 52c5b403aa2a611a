package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// Filter matches a portfolio name or a ticker.
type Filter interface {
	Match(name string) bool
}

// Parse builds a filter from an expression:
// - Comma-separated exact names, case-insensitive: "ITSA4.SA,taee11.sa"
// - Glob: "*.SA"
// - Regex: "/^BB/"
// - Anything else: case-insensitive substring
// A leading "!" negates the expression: "!*.SA".
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "!") {
		inner, err := Parse(expr[1:])
		if err != nil {
			return nil, err
		}
		return Not{inner}, nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			set[strings.ToUpper(p)] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?[") {
		if _, err := filepath.Match(expr, ""); err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Tickers keeps the tickers f matches, in order.
func Tickers(f Filter, tickers []string) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Portfolios keeps the portfolios whose name f matches.
func Portfolios(f Filter, ps []types.Portfolio) []types.Portfolio {
	out := make([]types.Portfolio, 0, len(ps))
	for _, p := range ps {
		if f.Match(p.Name) {
			out = append(out, p)
		}
	}
	return out
}

// Assets keeps, in each portfolio, the assets whose ticker f matches.
// Portfolios left empty are dropped.
func Assets(f Filter, ps []types.Portfolio) []types.Portfolio {
	out := make([]types.Portfolio, 0, len(ps))
	for _, p := range ps {
		kept := p
		kept.Assets = nil
		for _, a := range p.Assets {
			if f.Match(a.Sym) {
				kept.Assets = append(kept.Assets, a)
			}
		}
		if len(kept.Assets) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// Implementations

type Always bool

func (a Always) Match(string) bool { return bool(a) }

type Not struct{ Filter }

func (n Not) Match(name string) bool { return !n.Filter.Match(name) }

type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(name string) bool {
	_, ok := e.set[strings.ToUpper(name)]
	return ok
}

// Glob matches case-insensitively; tickers are conventionally upper case
// while users type them in any case.
type Glob struct{ pattern string }

func (g Glob) Match(name string) bool {
	ok, _ := filepath.Match(strings.ToUpper(g.pattern), strings.ToUpper(name))
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(name string) bool { return r.re.MatchString(name) }

// String provides a human-readable representation useful for logs/errors.
func (g Glob) String() string  { return fmt.Sprintf("glob:%s", g.pattern) }
func (r Regex) String() string { return fmt.Sprintf("regex:%s", r.re) }

// SubstrCI matches if name contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(name string) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(s.needle))
}

func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
