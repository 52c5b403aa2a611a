package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divwatch/pkg/divwatch/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr  string
		match []string
		miss  []string
	}{
		{"", []string{"ANY"}, nil},
		{"itsa4.sa, TAEE11.SA", []string{"ITSA4.SA", "taee11.sa"}, []string{"ITSA4"}},
		{"*.sa", []string{"ITSA4.SA"}, []string{"AAPL"}},
		{"/^BB/", []string{"BBAS3.SA"}, []string{"ABB"}},
		{"taee", []string{"TAEE11.SA"}, []string{"ITSA4.SA"}},
		{"!*.SA", []string{"AAPL"}, []string{"ITSA4.SA"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Parse(tt.expr)
			require.NoError(t, err)
			for _, m := range tt.match {
				assert.True(t, f.Match(m), "%q should match %q", tt.expr, m)
			}
			for _, m := range tt.miss {
				assert.False(t, f.Match(m), "%q should not match %q", tt.expr, m)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("/[/")
	assert.Error(t, err)
	_, err = Parse("!/(/")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	f, err := Parse("*.SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"A.SA", "C.SA"}, Tickers(f, []string{"A.SA", "B", "C.SA"}))

	ps := []types.Portfolio{
		{Name: "br", Assets: []types.Asset{{Sym: "A.SA"}, {Sym: "B"}}},
		{Name: "us", Assets: []types.Asset{{Sym: "AAPL"}}},
	}
	kept := Assets(f, ps)
	require.Len(t, kept, 1)
	assert.Equal(t, []string{"A.SA"}, kept[0].Tickers())
	assert.Len(t, ps[0].Assets, 2, "input untouched")

	byName, err := Parse("us")
	require.NoError(t, err)
	assert.Equal(t, "us", Portfolios(byName, ps)[0].Name)
}
