// Package recommend finds movies rated alike by the same users.
package recommend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Rating is one row of a MovieLens ratings.csv file.
type Rating struct {
	UserID  int
	MovieID int
	Rating  float64
}

// Recommender holds one sparse user-rating vector per movie. It is
// immutable after New and safe for concurrent use.
type Recommender struct {
	items map[int]map[int]float64
	norms map[int]float64
}

// LoadRatingsFile reads a ratings.csv file from disk.
func LoadRatingsFile(path string) ([]Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer f.Close()
	return LoadRatings(f)
}

// LoadRatings parses `userId,movieId,rating[,timestamp]` rows; the
// timestamp column is ignored and a non-numeric first row is treated as
// the header.
func LoadRatings(r io.Reader) ([]Rating, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var out []Rating
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parse ratings csv: %w", err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("line %d: expected at least 3 columns, got %d", line, len(record))
		}
		user, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid userId %q", line, record[0])
		}
		movie, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid movieId %q", line, record[1])
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rating %q", line, record[2])
		}
		out = append(out, Rating{UserID: user, MovieID: movie, Rating: score})
	}
	return out, nil
}

// New builds the item vectors. A repeated (user, movie) pair keeps the
// last rating.
func New(ratings []Rating) *Recommender {
	r := &Recommender{
		items: make(map[int]map[int]float64),
		norms: make(map[int]float64),
	}
	for _, rt := range ratings {
		vec, ok := r.items[rt.MovieID]
		if !ok {
			vec = make(map[int]float64)
			r.items[rt.MovieID] = vec
		}
		vec[rt.UserID] = rt.Rating
	}
	for id, vec := range r.items {
		var sum float64
		for _, v := range vec {
			sum += v * v
		}
		r.norms[id] = math.Sqrt(sum)
	}
	return r
}

// Movies returns the number of movies with at least one rating.
func (r *Recommender) Movies() int {
	return len(r.items)
}

// Has reports whether movieID has ratings.
func (r *Recommender) Has(movieID int) bool {
	_, ok := r.items[movieID]
	return ok
}

type neighbour struct {
	id  int
	sim float64
}

// Similar returns up to k movie ids ordered by descending cosine
// similarity to movieID, then ascending id. The movie itself and movies
// with no shared raters are excluded. Unknown movies yield nil.
func (r *Recommender) Similar(movieID, k int) []int {
	target, ok := r.items[movieID]
	if !ok || k <= 0 {
		return nil
	}
	targetNorm := r.norms[movieID]
	if targetNorm == 0 {
		return nil
	}

	var found []neighbour
	for id, vec := range r.items {
		if id == movieID || r.norms[id] == 0 {
			continue
		}
		dot := dotProduct(target, vec)
		if dot <= 0 {
			continue
		}
		found = append(found, neighbour{id: id, sim: dot / (targetNorm * r.norms[id])})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].sim != found[j].sim {
			return found[i].sim > found[j].sim
		}
		return found[i].id < found[j].id
	})
	if len(found) > k {
		found = found[:k]
	}
	ids := make([]int, len(found))
	for i, n := range found {
		ids[i] = n.id
	}
	return ids
}

// dotProduct iterates the smaller vector.
func dotProduct(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for user, v := range a {
		if w, ok := b[user]; ok {
			sum += v * w
		}
	}
	return sum
}
