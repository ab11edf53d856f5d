// Package ui is the interactive suggestion prompt: a text input with a
// live list of matching titles underneath.
package ui

import (
	"context"
	"regexp"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/moviesearch/internal/binder"
)

const (
	defaultWidth      = 80
	defaultMaxVisible = 10
	footerText        = "↑/↓ select • tab complete • enter accept • esc quit"
	selectedMarker    = "> "
	optionMarker      = "  "
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// suggestionsMsg carries a completed fetch back onto the event loop.
type suggestionsMsg binder.Result

// Options configures the prompt.
type Options struct {
	Placeholder string
	MaxVisible  int
	NoColor     bool
	Theme       *Theme
}

// Model is the bubbletea model for the prompt. Input events go through
// the binder; results come back as messages and are applied in Update.
type Model struct {
	ctx    context.Context
	binder *binder.Binder

	Input      textinput.Model
	Selected   int
	MaxVisible int
	NoColor    bool
	WinWidth   int
	WinHeight  int

	accepted bool
	styles   styles
}

// NewModel builds a focused prompt bound to b. ctx scopes every fetch.
func NewModel(ctx context.Context, b *binder.Binder, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.SetWidth(defaultWidth)
	ti.Focus()

	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	if !opts.NoColor {
		applyInputStyles(&ti, th)
	}
	maxVisible := opts.MaxVisible
	if maxVisible <= 0 {
		maxVisible = defaultMaxVisible
	}
	return &Model{
		ctx:        ctx,
		binder:     b,
		Input:      ti,
		MaxVisible: maxVisible,
		NoColor:    opts.NoColor,
		WinWidth:   defaultWidth,
		styles:     newStyles(th, opts.NoColor),
	}
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value is the current input text.
func (m *Model) Value() string {
	return m.Input.Value()
}

// Accepted reports whether the prompt was closed with enter rather than
// cancelled.
func (m *Model) Accepted() bool {
	return m.accepted
}

// Options returns the current suggestions.
func (m *Model) Options() []string {
	return m.binder.List().Options()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.Input.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case suggestionsMsg:
		if m.binder.Apply(binder.Result(msg)) {
			m.Selected = 0
		}
		m.clampSelection()
		return m, nil

	case tea.KeyPressMsg:
		options := m.Options()
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.Selected > 0 {
				m.Selected--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.Selected < len(options)-1 {
				m.Selected++
			}
			return m, nil
		case "tab":
			return m, m.complete(options)
		case "enter":
			if len(options) > 0 && options[m.Selected] != m.Input.Value() {
				return m, m.complete(options)
			}
			m.accepted = true
			return m, tea.Quit
		}
	}

	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if m.Input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.inputChanged())
}

// complete copies the selected option into the input, which counts as an
// input event of its own.
func (m *Model) complete(options []string) tea.Cmd {
	if len(options) == 0 {
		return nil
	}
	m.Input.SetValue(options[m.Selected])
	m.Input.CursorEnd()
	return m.inputChanged()
}

func (m *Model) inputChanged() tea.Cmd {
	m.Selected = 0
	fetch := m.binder.Input(m.ctx, m.Input.Value())
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		return suggestionsMsg(fetch.Run())
	}
}

func (m *Model) clampSelection() {
	n := len(m.Options())
	if m.Selected >= n {
		m.Selected = n - 1
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
}

func (m *Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render draws the prompt as a string.
func (m *Model) Render() string {
	var b strings.Builder
	b.WriteString(m.Input.View())
	b.WriteString("\n")

	options := m.Options()
	if len(options) > 0 {
		b.WriteString(m.styles.list.Render(m.renderOptions(options)))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.footer.Render(runewidth.Truncate(footerText, m.WinWidth, "")))
	b.WriteString("\n")

	out := b.String()
	if m.NoColor {
		out = ansiRegexp.ReplaceAllString(out, "")
	}
	return out
}

// renderOptions shows a window of MaxVisible options that keeps the
// selection in view.
func (m *Model) renderOptions(options []string) string {
	start := 0
	if m.Selected >= m.MaxVisible {
		start = m.Selected - m.MaxVisible + 1
	}
	end := min(start+m.MaxVisible, len(options))

	// border + padding
	width := max(m.WinWidth-2, 1)
	if m.NoColor {
		// Without colors the selection is shown by a marker column.
		width = max(width-runewidth.StringWidth(selectedMarker), 1)
	}
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := runewidth.Truncate(options[i], width, "…")
		selected := i == m.Selected
		if m.NoColor {
			if selected {
				line = selectedMarker + line
			} else {
				line = optionMarker + line
			}
		}
		if selected {
			line = m.styles.selected.Render(line)
		} else {
			line = m.styles.option.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
