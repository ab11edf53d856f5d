// Package formatter renders title lists for the CLI.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	toml "github.com/pelletier/go-toml/v2"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatList Format = "list"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the accepted --output values.
var Formats = []Format{FormatText, FormatList, FormatJSON, FormatYAML, FormatTOML}

var (
	defaultIndexColor = lipgloss.Color("81")
	defaultTitleColor = lipgloss.Color("248")

	indexStyle lipgloss.Style
	titleStyle lipgloss.Style
)

// ListColors controls the rendered colors for list output. Nil fields
// fall back to the defaults (ANSI 256 codes).
type ListColors struct {
	IndexColor color.Color
	TitleColor color.Color
}

// SetListTheme overrides the list styles.
func SetListTheme(lc ListColors) {
	ic, tc := lc.IndexColor, lc.TitleColor
	if ic == nil {
		ic = defaultIndexColor
	}
	if tc == nil {
		tc = defaultTitleColor
	}
	indexStyle = lipgloss.NewStyle().Foreground(ic)
	titleStyle = lipgloss.NewStyle().Foreground(tc)
}

//nolint:gochecknoinits // initialize default list theme for package consumers
func init() {
	SetListTheme(ListColors{})
}

// ParseFormat validates an --output value. Empty means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of %s)", s, joinFormats())
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Options controls Write.
type Options struct {
	Format  Format
	NoColor bool
	// ArrayStyle applies to list output: numbered, bullet, index, none.
	ArrayStyle string
}

// document is the keyed shape used by formats that need a top-level table.
type document struct {
	Titles []string `json:"titles" yaml:"titles" toml:"titles"`
}

// Write renders titles to w. JSON output is a bare array, matching the
// service; YAML and TOML wrap it in a `titles` key.
func Write(w io.Writer, titles []string, opts Options) error {
	if titles == nil {
		titles = []string{}
	}
	out, err := Render(titles, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Render returns titles encoded per opts.
func Render(titles []string, opts Options) (string, error) {
	switch opts.Format {
	case "", FormatText:
		if len(titles) == 0 {
			return "", nil
		}
		return strings.Join(titles, "\n") + "\n", nil
	case FormatList:
		return FormatAsList(titles, ListOptions{NoColor: opts.NoColor, ArrayStyle: opts.ArrayStyle}), nil
	case FormatJSON:
		b, err := json.MarshalIndent(titles, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(b) + "\n", nil
	case FormatYAML:
		out, err := FormatYAMLDoc(document{Titles: titles}, YAMLFormatOptions{Indent: 2})
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	case FormatTOML:
		b, err := toml.Marshal(document{Titles: titles})
		if err != nil {
			return "", fmt.Errorf("encode toml: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown output format %q", opts.Format)
	}
}
