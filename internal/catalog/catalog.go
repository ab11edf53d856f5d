// Package catalog holds the movie titles served by the search service.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultLimit caps Search when the caller passes a non-positive limit.
const DefaultLimit = 10

const noGenres = "(no genres listed)"

//go:embed sample_movies.csv
var sampleMovies []byte

// ErrEmpty is returned when a movies file holds no rows.
var ErrEmpty = errors.New("catalog has no movies")

// Movie is one row of a MovieLens movies.csv file.
type Movie struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres,omitempty"`
}

// Catalog is an immutable, file-ordered list of movies.
type Catalog struct {
	movies  []Movie
	lowered []string
	byTitle map[string]int
	byID    map[int]int
}

// Default returns the catalog built from the embedded sample file.
func Default() (*Catalog, error) {
	return LoadMovies(bytes.NewReader(sampleMovies))
}

// LoadFile reads a movies.csv file from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open movies file: %w", err)
	}
	defer f.Close()

	c, err := LoadMovies(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadMovies parses `movieId,title,genres` rows. A header row is skipped
// when its first column is not numeric.
func LoadMovies(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var movies []Movie
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parse movies csv: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least 2 columns, got %d", line, len(record))
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid movieId %q", line, record[0])
		}
		m := Movie{ID: id, Title: record[1]}
		if len(record) > 2 {
			m.Genres = splitGenres(record[2])
		}
		movies = append(movies, m)
	}
	if len(movies) == 0 {
		return nil, ErrEmpty
	}
	return New(movies), nil
}

// New builds a catalog from movies in the given order. Later duplicates of
// a title or id do not replace the first one in the lookup indexes.
func New(movies []Movie) *Catalog {
	c := &Catalog{
		movies:  movies,
		lowered: make([]string, len(movies)),
		byTitle: make(map[string]int, len(movies)),
		byID:    make(map[int]int, len(movies)),
	}
	for i, m := range movies {
		c.lowered[i] = strings.ToLower(m.Title)
		if _, ok := c.byTitle[m.Title]; !ok {
			c.byTitle[m.Title] = i
		}
		if _, ok := c.byID[m.ID]; !ok {
			c.byID[m.ID] = i
		}
	}
	return c
}

func splitGenres(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == noGenres {
		return nil
	}
	return strings.Split(s, "|")
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Titles returns every title in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.Title
	}
	return out
}

// ByTitle looks a movie up by its exact title.
func (c *Catalog) ByTitle(title string) (Movie, bool) {
	i, ok := c.byTitle[title]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// ByID looks a movie up by its movieId.
func (c *Catalog) ByID(id int) (Movie, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// Search returns up to limit titles containing query, compared
// case-insensitively and literally, in catalog order.
func (c *Catalog) Search(query string, limit int) []string {
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(query)
	var out []string
	for i, title := range c.lowered {
		if strings.Contains(title, needle) {
			out = append(out, c.movies[i].Title)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
