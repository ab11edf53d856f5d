package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/moviesearch/internal/filter"
	"github.com/oakwood-commons/moviesearch/internal/formatter"
	"github.com/oakwood-commons/moviesearch/internal/limiter"
	"github.com/oakwood-commons/moviesearch/internal/searchclient"
)

// outputOptions are shared by the commands that print a title list.
type outputOptions struct {
	output     string
	arrayStyle string
	where      string
	limit      int
	offset     int
	tail       int
}

func (o *outputOptions) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.output, "output", "o", "text", "output format: text|list|json|yaml|toml")
	fs.StringVar(&o.arrayStyle, "array-style", "numbered", "index style for list output: numbered, bullet, index, none")
	fs.StringVar(&o.where, "where", "", "CEL filter over `title`, e.g. 'title.endsWith(\"(1995)\")'")
	fs.IntVar(&o.limit, "limit", 0, "show only the first N titles")
	fs.IntVar(&o.offset, "offset", 0, "skip the first N titles")
	fs.IntVar(&o.tail, "tail", 0, "show the last N titles (mutually exclusive with --limit; ignores --offset)")
}

// prepare validates the flags before any request is made.
func (o *outputOptions) prepare() (formatter.Format, *filter.Filter, limiter.Config, error) {
	format, err := formatter.ParseFormat(o.output)
	if err != nil {
		return "", nil, limiter.Config{}, err
	}
	limits := limiter.Config{Limit: o.limit, Offset: o.offset, Tail: o.tail}
	if err := limits.Validate(); err != nil {
		return "", nil, limits, fmt.Errorf("record limiting error: %w", err)
	}
	var f *filter.Filter
	if strings.TrimSpace(o.where) != "" {
		if f, err = filter.Compile(o.where); err != nil {
			return "", nil, limits, fmt.Errorf("--where: %w", err)
		}
	}
	return format, f, limits, nil
}

// print shapes titles and writes them to cmd's stdout.
func (o *outputOptions) print(cmd *cobra.Command, root *rootOptions, titles []string, format formatter.Format, f *filter.Filter, limits limiter.Config) error {
	titles, err := f.Apply(titles)
	if err != nil {
		return err
	}
	return formatter.Write(cmd.OutOrStdout(), limits.Apply(titles), formatter.Options{
		Format:     format,
		NoColor:    root.run.NoColor,
		ArrayStyle: o.arrayStyle,
	})
}

// notFound reports the service's 404 answer for an empty result.
func notFound(err error) bool {
	var statusErr *searchclient.StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

// serviceMessage extracts the "message" or "error" text from a failed
// response, falling back to the error itself.
func serviceMessage(err error) string {
	var statusErr *searchclient.StatusError
	if !errors.As(err, &statusErr) {
		return err.Error()
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return err.Error()
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	o := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print the titles containing a query",
		Long: "Call GET /search on the service and print the matching titles.\n" +
			"Matching is case-insensitive substring; the service caps the list.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, f, limits, err := o.prepare()
			if err != nil {
				return err
			}
			client, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.requestContext(cmd.Context())
			defer cancel()

			titles, err := client.Suggest(ctx, strings.Join(args, " "))
			if err != nil && !notFound(err) {
				return fmt.Errorf("search: %w", err)
			}
			return o.print(cmd, root, titles, format, f, limits)
		},
	}
	o.register(cmd.Flags())
	return cmd
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query>",
		Short: "Print the catalog title closest to a possibly misspelled query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.requestContext(cmd.Context())
			defer cancel()

			query := strings.Join(args, " ")
			title, err := client.Resolve(ctx, query)
			if notFound(err) {
				return fmt.Errorf("no title resembles %q", query)
			}
			if err != nil {
				return fmt.Errorf("resolve: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), title)
			return err
		},
	}
}

func newSimilarCmd(root *rootOptions) *cobra.Command {
	o := &outputOptions{}
	var k int
	cmd := &cobra.Command{
		Use:   "similar <title>",
		Short: "Print titles rated like the given one",
		Long: "Call GET /similar on the service. The title is resolved the same way\n" +
			"as `resolve`, so small misspellings are fine. The service needs\n" +
			"--ratings to answer.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, f, limits, err := o.prepare()
			if err != nil {
				return err
			}
			if k < 0 {
				return fmt.Errorf("--count must be non-negative, got %d", k)
			}
			client, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.requestContext(cmd.Context())
			defer cancel()

			titles, err := client.Similar(ctx, strings.Join(args, " "), k)
			if notFound(err) {
				return fmt.Errorf("similar: %s", serviceMessage(err))
			}
			if err != nil {
				return fmt.Errorf("similar: %w", err)
			}
			return o.print(cmd, root, titles, format, f, limits)
		},
	}
	cmd.Flags().IntVarP(&k, "count", "k", 0, "number of similar titles (default: the service's, 25)")
	o.register(cmd.Flags())
	return cmd
}
