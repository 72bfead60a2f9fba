package trees

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoredlab/archivist/models"
)

func TestBuildThread(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
		Comments: []models.Comment{
			{ID: 1, Author: "B", InReplyToID: 0, Created: 2000},
			{ID: 2, Author: "C", InReplyToID: 1, Created: 5000},
		},
	}

	tree := Build(rec, true)

	assert.Equal(t, 3, tree.NumNodes())
	assert.Equal(t, 2, tree.NumEdges())

	w, ok := tree.Weight(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)

	w, ok = tree.Weight(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 3.0, w)

	root, _ := tree.Node(0)
	assert.Equal(t, NodePost, root.NodeType)
	assert.Equal(t, "A", root.Author)

	leaf, _ := tree.Node(2)
	assert.Equal(t, NodeComment, leaf.NodeType)
	assert.Equal(t, 1, leaf.InReplyToID)
}

func TestBuildNoPosts(t *testing.T) {
	rec := models.Record{
		Comments: []models.Comment{{ID: 1, Author: "B", Created: 2000}},
	}

	tree := Build(rec, true)
	assert.Equal(t, 0, tree.NumNodes())
}

func TestBuildPostOnly(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
	}

	tree := Build(rec, true)
	assert.Equal(t, 1, tree.NumNodes())
	assert.Equal(t, 0, tree.NumEdges())
}

func TestBuildOrphanComment(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
		Comments: []models.Comment{
			{ID: 1, Author: "B", InReplyToID: 0, Created: 2000},
			// parent 77 never exists; node must survive without an edge
			{ID: 2, Author: "C", InReplyToID: 77, Created: 3000},
		},
	}

	tree := Build(rec, true)

	assert.Equal(t, 3, tree.NumNodes())
	assert.Equal(t, 1, tree.NumEdges())
	assert.True(t, tree.HasNode(2))
	assert.Equal(t, 0, tree.InDegree(2))
}

func TestBuildNonNegativeWeights(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 5000}},
		Comments: []models.Comment{
			// created before its parent
			{ID: 1, Author: "B", InReplyToID: 0, Created: 1000},
			// no timestamp at all
			{ID: 2, Author: "C", InReplyToID: 0, Created: 0},
		},
	}

	tree := Build(rec, true)
	for _, e := range tree.Edges() {
		assert.GreaterOrEqual(t, e.Weight, 0.0)
	}

	w, ok := tree.Weight(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 0.0, w)

	w, ok = tree.Weight(0, 2)
	assert.True(t, ok)
	assert.Equal(t, 0.0, w)
}

func TestBuildMinimalAttrs(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Title: "hello", Created: 1000, Score: 5}},
		Comments: []models.Comment{
			{ID: 1, Author: "B", Content: "hi", InReplyToID: 0, Created: 2000, Score: 3},
		},
	}

	tree := Build(rec, false)

	root, _ := tree.Node(0)
	assert.Equal(t, "A", root.Author)
	assert.Equal(t, int64(1000), root.Created)
	assert.Empty(t, root.Title)
	assert.Zero(t, root.Score)

	c, _ := tree.Node(1)
	assert.Equal(t, "B", c.Author)
	assert.Empty(t, c.Content)
}
