package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/moviesearch/internal/binder"
	"github.com/oakwood-commons/moviesearch/internal/formatter"
	"github.com/oakwood-commons/moviesearch/internal/ui"
	"github.com/oakwood-commons/moviesearch/pkg/logger"
	"github.com/oakwood-commons/moviesearch/pkg/settings"
)

type suggestOptions struct {
	lineMode     bool
	discardStale bool
	logFile      string
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	o := &suggestOptions{}
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest movie titles while you type",
		Long: "Open an interactive prompt backed by the search service. Every edit\n" +
			"clears the suggestions and fetches new ones; tab or enter completes the\n" +
			"selected title and a second enter prints it.\n\n" +
			"When stdin is not a terminal (or with --lines) each input line is one\n" +
			"query and the suggestions are printed after each response, followed by\n" +
			"a blank line.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("discard-stale") {
				o.discardStale = root.cfg.Client.DiscardStale
			}
			client, err := root.client()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			interactive := !o.lineMode && isTerminal(in)
			log := root.log
			if interactive {
				// The prompt owns the screen, so errors go to a file.
				f, path, err := openSuggestLog(o.logFile)
				if err != nil {
					return err
				}
				defer f.Close()
				log = logger.New(f, root.run.MinLogLevel)
				root.log.V(1).Info("suggest log", "path", path)
			}

			b := binder.New(binder.NewMemoryList(), client,
				binder.WithLogger(log.WithValues(logger.ComponentKey, binder.InputID)),
				binder.WithStaleGuard(o.discardStale))

			if !interactive {
				return runLineMode(cmd.Context(), b, in, cmd.OutOrStdout())
			}
			run, _ := settings.FromContext(cmd.Context())
			value, err := ui.Run(cmd.Context(), b, ui.Options{
				Placeholder: root.cfg.UI.Placeholder,
				MaxVisible:  root.cfg.UI.MaxVisible,
				NoColor:     run != nil && run.NoColor,
			}, tea.WithInput(in), tea.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return fmt.Errorf("suggest prompt: %w", err)
			}
			if value != "" {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&o.lineMode, "lines", false, "read one query per line from stdin even on a terminal")
	cmd.Flags().BoolVar(&o.discardStale, "discard-stale", false, "drop responses for superseded input (default from config)")
	cmd.Flags().StringVar(&o.logFile, "log-file", "", "where the interactive prompt writes its log (default <tmp>/moviesearch-suggest.log)")
	return cmd
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func openSuggestLog(path string) (*os.File, string, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "moviesearch-suggest.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, path, fmt.Errorf("open suggest log: %w", err)
	}
	return f, path, nil
}

// runLineMode treats each line of in as an input event and prints the
// list after every applied result, followed by a blank line.
func runLineMode(ctx context.Context, b *binder.Binder, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(inputs)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case inputs <- scanner.Text():
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var writeErr error
	err := b.Run(ctx, inputs, func(_ binder.Result, changed bool) {
		if !changed || writeErr != nil {
			return
		}
		writeErr = printList(out, b.List().Options())
		if writeErr != nil {
			cancel()
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return err
	}
	return <-scanErr
}

func printList(out io.Writer, titles []string) error {
	if err := formatter.Write(out, titles, formatter.Options{Format: formatter.FormatText}); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}
