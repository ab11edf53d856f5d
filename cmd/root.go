package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/moviesearch/internal/config"
	"github.com/oakwood-commons/moviesearch/internal/searchclient"
	"github.com/oakwood-commons/moviesearch/pkg/logger"
	"github.com/oakwood-commons/moviesearch/pkg/settings"
)

// rootOptions holds the persistent flags and the state PersistentPreRunE
// derives from them.
type rootOptions struct {
	configFile string
	server     string
	debug      bool
	noColor    bool

	cfg config.Config
	run *settings.Run
	log logr.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{run: settings.NewCliParams(), log: logr.Discard()}

	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Movie title search service and autocomplete client",
		Long: "moviesearch serves a movie catalog over HTTP (GET /search?query=...) and\n" +
			"offers an interactive prompt that suggests titles while you type.",
		Example: "\n  moviesearch serve --movies movies.csv --ratings ratings.csv\n" +
			"  moviesearch suggest\n" +
			"  moviesearch search batman -o json\n" +
			"  moviesearch search bat --where 'title.endsWith(\"(1995)\")'\n" +
			"  moviesearch similar 'Heat (1995)' -k 5\n",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/moviesearch/config.yaml if present)")
	pf.StringVar(&o.server, "server", "", "search service base URL (overrides $"+settings.ServerEnvVar+" and config)")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.noColor, "no-color", false, "disable color output")

	rootCmd.AddCommand(
		newServeCmd(o),
		newSuggestCmd(o),
		newSearchCmd(o),
		newResolveCmd(o),
		newSimilarCmd(o),
		newConfigCmd(o),
		newVersionCmd(),
	)
	return rootCmd
}

// init loads config and builds the logger for the invoked command.
func (o *rootOptions) init(cmd *cobra.Command) error {
	// Map CLI debug flag to log level: debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
	var level int8
	if o.debug {
		level = -1
	}
	lgr := logger.Get(level)
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())
	o.log = *lgr

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	o.run = &settings.Run{
		MinLogLevel: level,
		ConfigFile:  o.configFile,
		ServerURL:   settings.ResolveServerURL(o.server, cfg.Client.BaseURL),
		NoColor:     o.noColor || cfg.UI.NoColor,
		Debug:       o.debug,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, o.run)
	cmd.SetContext(ctx)
	return nil
}

// client builds a search client for the resolved server URL.
func (o *rootOptions) client() (*searchclient.Client, error) {
	c, err := searchclient.New(o.run.ServerURL, searchclient.WithLogger(o.log.WithName("client")))
	if err != nil {
		return nil, err
	}
	o.log.V(1).Info("using search service", "url", c.BaseURL())
	return c, nil
}

// requestContext bounds one-shot commands by client.timeout.
func (o *rootOptions) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.Client.Timeout > 0 {
		return context.WithTimeout(ctx, o.cfg.Client.Timeout)
	}
	return context.WithCancel(ctx)
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
