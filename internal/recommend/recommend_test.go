package recommend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratingsCSV = `userId,movieId,rating,timestamp
1,10,5.0,964982703
1,20,5.0,964981247
1,30,1.0,964982224
2,10,4.0,964983815
2,20,4.0,964982931
2,40,2.0,964982400
3,30,5.0,964980868
3,40,5.0,964982176
`

func TestLoadRatings(t *testing.T) {
	ratings, err := LoadRatings(strings.NewReader(ratingsCSV))
	require.NoError(t, err)
	require.Len(t, ratings, 8)
	assert.Equal(t, Rating{UserID: 1, MovieID: 10, Rating: 5}, ratings[0])
	assert.Equal(t, Rating{UserID: 3, MovieID: 40, Rating: 5}, ratings[7])
}

func TestLoadRatingsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  string
	}{
		{name: "short row", data: "1,2\n", err: "at least 3 columns"},
		{name: "bad user", data: "1,2,3\nx,2,3\n", err: "invalid userId"},
		{name: "bad movie", data: "1,x,3\n", err: "invalid movieId"},
		{name: "bad rating", data: "1,2,five\n", err: "invalid rating"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRatings(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestLoadRatingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	require.NoError(t, os.WriteFile(path, []byte(ratingsCSV), 0o600))
	ratings, err := LoadRatingsFile(path)
	require.NoError(t, err)
	assert.Len(t, ratings, 8)
}

func TestSimilar(t *testing.T) {
	ratings, err := LoadRatings(strings.NewReader(ratingsCSV))
	require.NoError(t, err)
	r := New(ratings)

	assert.Equal(t, 4, r.Movies())
	assert.True(t, r.Has(10))
	assert.False(t, r.Has(99))

	// 20 is rated identically to 10 by the same users, so it is the
	// nearest; 30 and 40 share one rater each.
	got := r.Similar(10, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, 20, got[0])
	assert.NotContains(t, got, 10)
	assert.ElementsMatch(t, []int{20, 30, 40}, got)

	assert.Equal(t, []int{20}, r.Similar(10, 1))
	assert.Nil(t, r.Similar(99, 5))
	assert.Nil(t, r.Similar(10, 0))
}

func TestSimilarTieBreaksOnID(t *testing.T) {
	r := New([]Rating{
		{UserID: 1, MovieID: 1, Rating: 3},
		{UserID: 1, MovieID: 3, Rating: 3},
		{UserID: 1, MovieID: 2, Rating: 3},
	})
	assert.Equal(t, []int{2, 3}, r.Similar(1, 10))
}

func TestNewKeepsLastRating(t *testing.T) {
	r := New([]Rating{
		{UserID: 1, MovieID: 1, Rating: 1},
		{UserID: 1, MovieID: 1, Rating: 4},
	})
	assert.InDelta(t, 4.0, r.norms[1], 1e-9)
}
