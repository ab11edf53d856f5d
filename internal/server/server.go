// Package server exposes the movie catalog over HTTP.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/oakwood-commons/moviesearch/internal/catalog"
	"github.com/oakwood-commons/moviesearch/internal/recommend"
)

const (
	defaultAddr     = ":5000"
	defaultSimilarK = 25
	maxSimilarK     = 100
	shutdownTimeout = 5 * time.Second
)

//go:embed home.md
var homeMarkdown []byte

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr        string
	Limit       int
	SimilarK    int
	Recommender *recommend.Recommender
	Logger      logr.Logger
}

// Server serves /search and the related endpoints from an immutable catalog.
type Server struct {
	echo        *echo.Echo
	catalog     *catalog.Catalog
	recommender *recommend.Recommender
	addr        string
	limit       int
	similarK    int
	log         logr.Logger
	home        []byte
}

// New wires the routes and middleware.
func New(cat *catalog.Catalog, opts Options) *Server {
	s := &Server{
		catalog:     cat,
		recommender: opts.Recommender,
		addr:        opts.Addr,
		limit:       opts.Limit,
		similarK:    opts.SimilarK,
		log:         opts.Logger,
		home:        renderHome(),
	}
	if s.addr == "" {
		s.addr = defaultAddr
	}
	if s.limit <= 0 {
		s.limit = catalog.DefaultLimit
	}
	if s.similarK <= 0 {
		s.similarK = defaultSimilarK
	}
	if s.log.GetSink() == nil {
		s.log = logr.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(requestLogger(s.log))
	e.Use(middleware.Recover())

	e.GET("/", s.handleHome)
	e.GET("/health", s.handleHealth)
	e.GET("/search", s.handleSearch)
	e.GET("/resolve", s.handleResolve)
	e.GET("/similar", s.handleSimilar)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start listens on the configured address and blocks until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("search service listening", "addr", ln.Addr().String(), "movies", s.catalog.Len())
		errCh <- s.echo.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("search service stopped")
	return nil
}

func renderHome() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "moviesearch",
	})
	return markdown.ToHTML(homeMarkdown, p, r)
}

func requestLogger(log logr.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.Error(v.Error, "request failed",
					"method", v.Method, "uri", v.URI, "status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
				return nil
			}
			log.Info("request completed",
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	})
}
