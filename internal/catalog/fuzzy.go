package catalog

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var (
	algoOnce sync.Once
	slabPool = sync.Pool{
		New: func() any { return util.MakeSlab(16*1024, 2048) },
	}
)

// Closest resolves query to a single movie: the exact title if present,
// else a case-insensitive exact match, else the best fzf match. Ties go to
// the shorter title, then to catalog order. ok is false when nothing in
// the catalog contains every rune of query in order.
func (c *Catalog) Closest(query string) (Movie, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(c.movies) == 0 {
		return Movie{}, false
	}
	if m, ok := c.ByTitle(query); ok {
		return m, true
	}
	lowered := strings.ToLower(query)
	for i, title := range c.lowered {
		if title == lowered {
			return c.movies[i], true
		}
	}

	algoOnce.Do(func() { algo.Init("default") })
	slab := slabPool.Get().(*util.Slab)
	defer slabPool.Put(slab)

	pattern := algo.NormalizeRunes([]rune(lowered))
	best, bestScore := -1, 0
	for i, m := range c.movies {
		chars := util.ToChars([]byte(m.Title))
		res, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if res.Start < 0 {
			continue
		}
		switch {
		case best < 0, res.Score > bestScore:
			best, bestScore = i, res.Score
		case res.Score == bestScore && len(m.Title) < len(c.movies[best].Title):
			best = i
		}
	}
	if best < 0 {
		return Movie{}, false
	}
	return c.movies[best], true
}
