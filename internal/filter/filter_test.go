package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var titles = []string{
	"Batman (1989)",
	"Batman Returns (1992)",
	"Batman Forever (1995)",
	"Heat (1995)",
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{name: "year suffix", expr: `title.endsWith("(1995)")`, want: []string{"Batman Forever (1995)", "Heat (1995)"}},
		{name: "strings extension", expr: `title.lowerAscii().contains("returns")`, want: []string{"Batman Returns (1992)"}},
		{name: "regex", expr: `title.matches("^Batman \\(")`, want: []string{"Batman (1989)"}},
		{name: "size", expr: `size(title) < 12`, want: []string{"Heat (1995)"}},
		{name: "nothing", expr: `title == ""`, want: []string{}},
		{name: "macro", expr: `["Heat", "Ronin"].exists(t, title.startsWith(t))`, want: []string{"Heat (1995)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, f.String())

			got, err := f.Apply(titles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		errMsg string
	}{
		{name: "syntax", expr: `title.endsWith(`, errMsg: "compilation error"},
		{name: "unknown variable", expr: `name == "x"`, errMsg: "compilation error"},
		{name: "not bool", expr: `title + "!"`, errMsg: "must return bool"},
		{name: "constant true", expr: `true`, errMsg: "never references title"},
		{name: "constant comparison", expr: `1 < 2`, errMsg: "never references title"},
		{name: "string constant only", expr: `"Heat".startsWith("H")`, errMsg: "never references title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNilFilterKeepsAll(t *testing.T) {
	var f *Filter
	got, err := f.Apply(titles)
	require.NoError(t, err)
	assert.Equal(t, titles, got)
}
