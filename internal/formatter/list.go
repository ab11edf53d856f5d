package formatter

import (
	"fmt"
	"strings"
)

// ListOptions controls list output formatting.
type ListOptions struct {
	NoColor    bool   // disable color output
	ArrayStyle string // index style: numbered (default), bullet, index, none
}

// FormatAsList renders titles one per line with an index marker.
func FormatAsList(titles []string, opts ListOptions) string {
	var b strings.Builder
	for i, title := range titles {
		marker := FormatArrayIndex(i, opts.ArrayStyle)
		if !opts.NoColor {
			if marker != "" {
				marker = indexStyle.Render(marker)
			}
			title = titleStyle.Render(title)
		}
		if marker != "" {
			b.WriteString(marker)
			b.WriteString(" ")
		}
		b.WriteString(title)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatArrayIndex returns the marker for the i-th element.
func FormatArrayIndex(i int, style string) string {
	switch style {
	case "bullet":
		return "•"
	case "index":
		return fmt.Sprintf("[%d]", i)
	case "none":
		return ""
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}
