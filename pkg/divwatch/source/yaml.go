package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

// YAMLSource loads portfolios from a YAML file or a directory of them.
//
// A file looks like:
//
//	currency: BRL
//	assets:
//	  - sym: ITSA4.SA
//	    avg: 9.87
//	  - name: energy
//	    assets:
//	      - sym: TAEE11.SA
//
// Each group with leaf assets becomes its own portfolio, named by the path of
// group names.
type YAMLSource struct{}

// Load expects spec to be a string filepath.
func (YAMLSource) Load(ctx context.Context, spec any) ([]types.Portfolio, error) { //nolint:revive // ctx reserved for future use
	path, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("yaml source expects filepath string spec")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		ps, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i := range ps {
			if strings.TrimSpace(ps[i].Name) == "" {
				ps[i].Name = base
			}
		}
		return ps, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.Portfolio
	for _, full := range files {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		ps, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		// Prefix group names with the file's path relative to the directory.
		rel, err := filepath.Rel(path, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		for i := range ps {
			if strings.TrimSpace(ps[i].Name) == "" {
				ps[i].Name = prefix
			} else if prefix != "" {
				ps[i].Name = prefix + "/" + ps[i].Name
			}
		}
		all = append(all, ps...)
	}
	return all, nil
}

func parseYAML(data []byte) ([]types.Portfolio, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("invalid yaml: expected map with 'assets'")
	}
	currency, _ := root["currency"].(string)
	node, ok := root["assets"]
	if !ok || node == nil {
		return nil, fmt.Errorf("invalid yaml: missing 'assets'")
	}

	var (
		out     []types.Portfolio
		walkErr error
	)
	var walk func(node any, path []string)
	walk = func(node any, path []string) {
		list, ok := node.([]any)
		if !ok {
			walkErr = fmt.Errorf("invalid yaml: 'assets' of %q must be a list", deriveName(path))
			return
		}
		var leaves []types.Asset
		for _, e := range list {
			m, ok := e.(map[string]any)
			if !ok {
				walkErr = fmt.Errorf("invalid yaml: asset entry %v is not a map", e)
				return
			}
			if _, isGroup := m["assets"]; isGroup {
				continue
			}
			a, err := toAsset(m)
			if err != nil {
				walkErr = err
				return
			}
			leaves = append(leaves, a)
		}
		if len(leaves) > 0 {
			out = append(out, types.Portfolio{Name: deriveName(path), Currency: currency, Assets: leaves})
		}
		for _, e := range list {
			g := e.(map[string]any)
			child, isGroup := g["assets"]
			if !isGroup || walkErr != nil {
				continue
			}
			next := append([]string(nil), path...)
			if name, ok := g["name"].(string); ok && name != "" {
				next = append(next, name)
			}
			walk(child, next)
		}
	}
	walk(node, nil)
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func toAsset(m map[string]any) (types.Asset, error) {
	a := types.Asset{Fields: map[string]any{}}
	if sym, ok := m["sym"]; ok && sym != nil {
		a.Sym = types.Symbol(fmt.Sprint(sym))
	}
	if a.Sym == "" {
		return a, fmt.Errorf("invalid yaml: asset without 'sym': %v", m)
	}
	if name, ok := m["name"]; ok && name != nil {
		a.Name = fmt.Sprint(name)
	}
	if avg, ok := m["avg"]; ok && avg != nil {
		d, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(avg)))
		if err != nil {
			return a, fmt.Errorf("invalid avg %v for %s", avg, a.Sym)
		}
		if d.IsNegative() {
			return a, fmt.Errorf("negative avg %s for %s", d, a.Sym)
		}
		a.AvgPrice = decimal.NewNullDecimal(d)
	}
	for k, v := range m {
		if k == "sym" || k == "name" || k == "avg" {
			continue
		}
		a.Fields[k] = v
	}
	return a, nil
}

func deriveName(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return strings.Join(path, "/")
}
