package columns

import (
	"fmt"
	"slices"
	"strings"
)

// Sets are named column groups, selected with --sets.
var Sets = map[string][]string{
	"summary":   DefaultColumns,
	"yield":     {"ticker", "dy", "yoc"},
	"dividends": {"ticker", "div12m", "avg_div12m", "last_div", "trend"},
	// needs the live quote service
	"market": {"name", "live", "chg%"},
}

// ExpandSets concatenates the named sets, in order and without repeats.
// Names are case-insensitive.
func ExpandSets(names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		cols, ok := Sets[name]
		if !ok {
			return nil, &UnknownSetError{Name: name, Available: sortedSetNames()}
		}
		out = appendUnique(out, cols...)
	}
	return out, nil
}

// sortedSetNames returns the names of Sets in ascending order.
func sortedSetNames() []string {
	names := make([]string, 0, len(Sets))
	for name := range Sets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// appendUnique appends the keys of add missing from dst, skipping blanks.
func appendUnique(dst []string, add ...string) []string {
	for _, k := range add {
		if k != "" && !slices.Contains(dst, k) {
			dst = append(dst, k)
		}
	}
	return dst
}

type UnknownSetError struct {
	Name      string
	Available []string
}

func (e *UnknownSetError) Error() string {
	return fmt.Sprintf("unknown column set %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
