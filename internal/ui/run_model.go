package ui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/moviesearch/internal/binder"
)

// Run starts the prompt and blocks until the user accepts or quits. It
// returns the accepted text, or "" when the prompt was cancelled.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, b *binder.Binder, opts Options, progOpts ...tea.ProgramOption) (string, error) {
	m := NewModel(ctx, b, opts)
	progOpts = append(progOpts, tea.WithContext(ctx))

	prog := tea.NewProgram(m, progOpts...)
	finalModel, err := prog.Run()
	if err != nil {
		return "", err
	}
	if fm, ok := finalModel.(*Model); ok && fm != nil && fm.Accepted() {
		return fm.Value(), nil
	}
	return "", nil
}
