package network

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredlab/archivist/models"
)

type row struct {
	user string
	rec  models.Record
}

type sliceSource []row

func (s sliceSource) All() iter.Seq2[string, models.Record] {
	return func(yield func(string, models.Record) bool) {
		for _, r := range s {
			if !yield(r.user, r.rec) {
				return
			}
		}
	}
}

// two B→A replies, one C→A reply
func repeatedReplies() sliceSource {
	return sliceSource{
		{user: "A", rec: models.Record{
			Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
			Comments: []models.Comment{
				{ID: 1, Author: "B", InReplyToID: 0, Created: 2000},
				{ID: 2, Author: "B", InReplyToID: 0, Created: 3000},
				{ID: 3, Author: "C", InReplyToID: 0, Created: 4000},
			},
		}},
	}
}

func TestBuildAccumulatesWeights(t *testing.T) {
	g := Build(repeatedReplies(), Options{})

	w, ok := g.Weight("B", "A")
	require.True(t, ok)
	assert.Equal(t, 2.0, w)

	w, ok = g.Weight("C", "A")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
}

func TestBuildThresholdIsInclusive(t *testing.T) {
	g := Build(repeatedReplies(), Options{MinInteractions: 2})

	// exactly 2 occurrences: included
	_, ok := g.Weight("B", "A")
	assert.True(t, ok)

	// 1 occurrence: excluded, and C gains no node at all
	_, ok = g.Weight("C", "A")
	assert.False(t, ok)
	assert.False(t, g.HasNode("C"))
}

func TestBuildTimeRange(t *testing.T) {
	g := Build(repeatedReplies(), Options{
		TimeRange: &TimeRange{Start: 2000, End: 3000},
	})

	w, ok := g.Weight("B", "A")
	require.True(t, ok)
	assert.Equal(t, 2.0, w)

	_, ok = g.Weight("C", "A")
	assert.False(t, ok)
}

func TestBuildUserFilterOnEndpoints(t *testing.T) {
	users := map[string]struct{}{"A": {}, "B": {}}
	g := Build(repeatedReplies(), Options{Users: users})

	_, ok := g.Weight("B", "A")
	assert.True(t, ok)

	// C is outside the user set, so its edge is dropped
	assert.False(t, g.HasNode("C"))
}

func TestBuildUserFilterOnRecordOwner(t *testing.T) {
	src := repeatedReplies()
	g := Build(src, Options{Users: map[string]struct{}{"B": {}, "C": {}}})

	// record is owned by A, who is filtered out, so nothing is read
	assert.Equal(t, 0, g.NumNodes())
}

func TestBuildSelfLoops(t *testing.T) {
	src := sliceSource{
		{user: "A", rec: models.Record{
			Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
			Comments: []models.Comment{
				{ID: 1, Author: "A", InReplyToID: 0, Created: 2000},
			},
		}},
	}
	g := Build(src, Options{})

	w, ok := g.Weight("A", "A")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
}

func TestBuildEmptySource(t *testing.T) {
	g := Build(sliceSource{}, Options{})
	assert.Equal(t, 0, g.NumNodes())
	assert.Equal(t, 0, g.NumEdges())
}
