package cmd

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/moviesearch/internal/catalog"
	"github.com/oakwood-commons/moviesearch/internal/recommend"
	"github.com/oakwood-commons/moviesearch/internal/server"
	"github.com/oakwood-commons/moviesearch/pkg/logger"
)

type serveOptions struct {
	addr     string
	movies   string
	ratings  string
	limit    int
	similarK int
}

func newServeCmd(root *rootOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search service",
		Long: "Serve GET /search?query=<text> from a MovieLens-style movies.csv\n" +
			"(the embedded sample when --movies is not set). With --ratings the\n" +
			"/similar endpoint recommends titles by rating similarity.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.applyConfig(cmd, root)
			srv, err := o.build(*logger.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (default from config, :5000)")
	cmd.Flags().StringVar(&o.movies, "movies", "", "path to movies.csv (movieId,title,genres)")
	cmd.Flags().StringVar(&o.ratings, "ratings", "", "path to ratings.csv (userId,movieId,rating[,timestamp])")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "maximum titles per /search response (default from config, 10)")
	cmd.Flags().IntVar(&o.similarK, "similar-k", 0, "default number of /similar results (default from config, 25)")
	return cmd
}

// applyConfig fills unset flags from the config file.
func (o *serveOptions) applyConfig(cmd *cobra.Command, root *rootOptions) {
	sc := root.cfg.Server
	flags := cmd.Flags()
	if !flags.Changed("addr") {
		o.addr = sc.Addr
	}
	if !flags.Changed("movies") {
		o.movies = sc.MoviesPath
	}
	if !flags.Changed("ratings") {
		o.ratings = sc.RatingsPath
	}
	if !flags.Changed("limit") {
		o.limit = sc.Limit
	}
	if !flags.Changed("similar-k") {
		o.similarK = sc.SimilarK
	}
}

func (o *serveOptions) build(log logr.Logger) (*server.Server, error) {
	log = log.WithValues(logger.ComponentKey, "server")

	var (
		cat *catalog.Catalog
		err error
	)
	if o.movies == "" {
		cat, err = catalog.Default()
		log.Info("using embedded sample catalog")
	} else {
		cat, err = catalog.LoadFile(o.movies)
	}
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}

	var rec *recommend.Recommender
	if o.ratings != "" {
		ratings, err := recommend.LoadRatingsFile(o.ratings)
		if err != nil {
			return nil, fmt.Errorf("load ratings: %w", err)
		}
		rec = recommend.New(ratings)
		log.Info("ratings loaded", "ratings", len(ratings), "movies", rec.Movies())
	}

	return server.New(cat, server.Options{
		Addr:        o.addr,
		Limit:       o.limit,
		SimilarK:    o.similarK,
		Recommender: rec,
		Logger:      log,
	}), nil
}
