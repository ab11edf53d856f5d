package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// errorBody and messageBody keep the response shapes the browser client
// has always seen: 400s carry "error", 404s carry "message".
type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

type resolveBody struct {
	Title string `json:"title"`
}

type healthBody struct {
	Status string `json:"status"`
}

var (
	errNoQuery     = errorBody{Error: "No query provided"}
	errNoTitle     = errorBody{Error: "No title provided"}
	msgNoMovies    = messageBody{Message: "No movies found"}
	msgNoRatings   = messageBody{Message: "No ratings loaded"}
	msgNoNeighbour = messageBody{Message: "No similar movies found"}
)

func (s *Server) handleHome(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, s.home)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthBody{Status: "ok"})
}

// handleSearch answers GET /search?query= with a JSON array of titles.
func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, errNoQuery)
	}

	titles := s.catalog.Search(query, s.limit)
	if len(titles) == 0 {
		return c.JSON(http.StatusNotFound, msgNoMovies)
	}
	s.log.V(1).Info("search", "query", query, "count", len(titles))
	return c.JSON(http.StatusOK, titles)
}

// handleResolve answers GET /resolve?query= with the closest title.
func (s *Server) handleResolve(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, errNoQuery)
	}
	m, ok := s.catalog.Closest(query)
	if !ok {
		return c.JSON(http.StatusNotFound, msgNoMovies)
	}
	return c.JSON(http.StatusOK, resolveBody{Title: m.Title})
}

// handleSimilar answers GET /similar?title=&k= with titles of movies rated
// alike. The title goes through the same resolution as /resolve.
func (s *Server) handleSimilar(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, errNoTitle)
	}

	k := s.similarK
	if raw := c.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSimilarK {
			return c.JSON(http.StatusBadRequest, errorBody{
				Error: "k must be an integer between 1 and " + strconv.Itoa(maxSimilarK),
			})
		}
		k = n
	}

	if s.recommender == nil {
		return c.JSON(http.StatusNotFound, msgNoRatings)
	}
	movie, ok := s.catalog.Closest(title)
	if !ok {
		return c.JSON(http.StatusNotFound, msgNoMovies)
	}

	ids := s.recommender.Similar(movie.ID, k)
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.catalog.ByID(id); ok {
			titles = append(titles, m.Title)
		}
	}
	if len(titles) == 0 {
		return c.JSON(http.StatusNotFound, msgNoNeighbour)
	}
	s.log.V(1).Info("similar", "title", movie.Title, "count", len(titles))
	return c.JSON(http.StatusOK, titles)
}
