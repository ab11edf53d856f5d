package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/moviesearch/internal/binder"
)

type mapSource map[string][]string

func (s mapSource) Suggest(_ context.Context, query string) ([]string, error) {
	if titles, ok := s[query]; ok {
		return titles, nil
	}
	return nil, errors.New("unexpected query " + query)
}

var movies = mapSource{
	"b":   {"Batman (1989)", "Babe (1995)", "Big Fish (2003)"},
	"ba":  {"Batman (1989)", "Babe (1995)"},
	"bat": {"Batman (1989)", "Batman Returns (1992)"},

	"Babe (1995)":           {"Babe (1995)"},
	"Batman (1989)":         {"Batman (1989)"},
	"Batman Returns (1992)": {"Batman Returns (1992)"},
}

func newTestModel(t *testing.T, src binder.Source) *Model {
	t.Helper()
	b := binder.New(binder.NewMemoryList(), src)
	return NewModel(context.Background(), b, Options{NoColor: true, MaxVisible: 2})
}

// suggestions runs cmd and returns the first suggestionsMsg it yields.
// Other commands (cursor blinks) are ignored.
func suggestions(t *testing.T, cmd tea.Cmd) (suggestionsMsg, bool) {
	t.Helper()
	found := make(chan suggestionsMsg, 8)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			switch msg := c().(type) {
			case tea.BatchMsg:
				for _, inner := range msg {
					run(inner)
				}
			case suggestionsMsg:
				found <- msg
			}
		}()
	}
	run(cmd)
	select {
	case msg := <-found:
		return msg, true
	case <-time.After(300 * time.Millisecond):
		return suggestionsMsg{}, false
	}
}

func typeKeys(t *testing.T, m *Model, text string) {
	t.Helper()
	for _, r := range text {
		_, cmd := m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
		msg, ok := suggestions(t, cmd)
		require.True(t, ok, "typing %q should fetch", string(r))
		m.Update(msg)
	}
}

func TestTypingFetchesSuggestions(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "bat")

	assert.Equal(t, "bat", m.Value())
	assert.Equal(t, []string{"Batman (1989)", "Batman Returns (1992)"}, m.Options())
	assert.Equal(t, 0, m.Selected)
}

func TestBackspaceToEmptyClearsList(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "b")
	require.NotEmpty(t, m.Options())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyBackspace})
	_, ok := suggestions(t, cmd)
	assert.False(t, ok, "empty input issues no fetch")
	assert.Empty(t, m.Value())
	assert.Empty(t, m.Options())
}

func TestSelectionMovesAndClamps(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "b")

	m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, m.Selected)
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, m.Selected)

	// Only MaxVisible rows are drawn and the selection stays visible.
	out := m.Render()
	assert.Contains(t, out, "Big Fish (2003)")
	assert.NotContains(t, out, "Batman (1989)")
}

func TestTabCompletesSelection(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "ba")
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, "Babe (1995)", m.Value())
	assert.Empty(t, m.Options(), "completion is an input event and clears the list")

	msg, ok := suggestions(t, cmd)
	require.True(t, ok)
	m.Update(msg)
	assert.Equal(t, []string{"Babe (1995)"}, m.Options())
}

func TestEnterAcceptsCompletedValue(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "bat")

	// First enter completes the selection.
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, "Batman (1989)", m.Value())
	assert.False(t, m.Accepted())
	msg, ok := suggestions(t, cmd)
	require.True(t, ok)
	m.Update(msg)

	// Second enter accepts it.
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.True(t, m.Accepted())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEscQuitsWithoutAccepting(t *testing.T) {
	m := newTestModel(t, movies)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Accepted())
}

func TestFailedFetchKeepsListEmpty(t *testing.T) {
	m := newTestModel(t, mapSource{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	msg, ok := suggestions(t, cmd)
	require.True(t, ok)
	require.Error(t, msg.Err)

	m.Update(msg)
	assert.Empty(t, m.Options())
	assert.Equal(t, 0, m.Selected)
}

func TestRenderTruncatesToWidth(t *testing.T) {
	m := newTestModel(t, mapSource{"l": {strings.Repeat("Long Title ", 10)}})
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	typeKeys(t, m, "l")

	out := m.Render()
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "\x1b[", "no-color output has no escape sequences")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n")[1:] {
		assert.LessOrEqual(t, len([]rune(line)), 20, line)
	}
}

func TestNoColorMarksSelectedRow(t *testing.T) {
	m := newTestModel(t, movies)
	typeKeys(t, m, "ba")
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	out := m.Render()
	assert.NotContains(t, out, "\x1b[")
	var marked []string
	for _, line := range strings.Split(out, "\n")[1:] {
		if strings.Contains(line, selectedMarker+"Babe (1995)") {
			marked = append(marked, line)
		}
		if strings.Contains(line, "Batman (1989)") {
			assert.NotContains(t, line, selectedMarker+"Batman", "unselected rows carry no marker")
		}
	}
	assert.Len(t, marked, 1)
}

func TestThemeColorsInput(t *testing.T) {
	th := DefaultTheme()
	b := binder.New(binder.NewMemoryList(), movies)
	m := NewModel(context.Background(), b, Options{Theme: &th})

	s := m.Input.Styles()
	assert.Equal(t, th.InputFG, s.Focused.Text.GetForeground())
	assert.Equal(t, th.GhostFG, s.Focused.Placeholder.GetForeground())
	assert.Equal(t, th.InputFG, s.Blurred.Text.GetForeground())
}
