package interactions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoredlab/archivist/models"
)

func threadRecord() models.Record {
	return models.Record{
		Posts: []models.Post{
			{ID: 0, Author: "A", Created: 1000},
		},
		Comments: []models.Comment{
			{ID: 1, Author: "B", InReplyToID: 0, Created: 2000},
			{ID: 2, Author: "C", InReplyToID: 1, Created: 5000},
		},
	}
}

func TestPairwise(t *testing.T) {
	got := Pairwise(threadRecord())

	assert.Equal(t, []Interaction{
		{Actor: "B", Target: "A", Created: 2000},
		{Actor: "C", Target: "B", Created: 5000},
	}, got)
}

func TestPairwiseNoPosts(t *testing.T) {
	rec := models.Record{
		Comments: []models.Comment{
			{ID: 1, Author: "B", InReplyToID: 0, Created: 2000},
		},
	}
	assert.Empty(t, Pairwise(rec))
}

func TestPairwiseNoComments(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
	}
	assert.Empty(t, Pairwise(rec))
}

func TestPairwiseSelfReply(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
		Comments: []models.Comment{
			{ID: 1, Author: "A", InReplyToID: 0, Created: 3000},
		},
	}

	got := Pairwise(rec)
	assert.Equal(t, []Interaction{{Actor: "A", Target: "A", Created: 3000}}, got)
}

func TestPairwiseSkipsUnresolvedAndAnonymous(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "A", Created: 1000}},
		Comments: []models.Comment{
			// parent id 99 never appears anywhere
			{ID: 1, Author: "B", InReplyToID: 99, Created: 2000},
			// empty actor
			{ID: 2, Author: "", InReplyToID: 0, Created: 3000},
			// target resolves to the empty author of comment 2
			{ID: 3, Author: "C", InReplyToID: 2, Created: 4000},
			// fine
			{ID: 4, Author: "D", InReplyToID: 0, Created: 5000},
		},
	}

	got := Pairwise(rec)
	assert.Equal(t, []Interaction{{Actor: "D", Target: "A", Created: 5000}}, got)
}

func TestGroupsPostLevel(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "zoe", Created: 1000}},
		Comments: []models.Comment{
			{ID: 1, Author: "bob", CommentParentID: 0, Created: 2000},
			{ID: 2, Author: "alice", CommentParentID: 0, Created: 3000},
			{ID: 3, Author: "bob", CommentParentID: 1, Created: 4000},
		},
	}

	got := Groups(rec, LevelPost)
	assert.Len(t, got, 1)
	assert.Equal(t, []string{"alice", "bob", "zoe"}, got[0].Authors)
	assert.Equal(t, int64(1000), got[0].Created)
}

func TestGroupsCommentLevel(t *testing.T) {
	rec := models.Record{
		Posts: []models.Post{{ID: 0, Author: "zoe", Created: 1000}},
		Comments: []models.Comment{
			{ID: 1, Author: "bob", CommentParentID: 0, Created: 2000},
			{ID: 2, Author: "alice", CommentParentID: 0, Created: 3000},
			{ID: 3, Author: "carl", CommentParentID: 1, Created: 4000},
			{ID: 4, Author: "bob", CommentParentID: 1, Created: 5000},
		},
	}

	got := Groups(rec, LevelComment)
	assert.Len(t, got, 2)

	assert.Equal(t, []string{"alice", "bob"}, got[0].Authors)
	assert.Equal(t, []string{"bob", "carl"}, got[1].Authors)

	// comment-level groups carry the post timestamp, not their own
	for _, g := range got {
		assert.Equal(t, int64(1000), g.Created)
	}
}

func TestGroupsEmptyRecord(t *testing.T) {
	assert.Empty(t, Groups(models.Record{}, LevelPost))
	assert.Empty(t, Groups(threadRecord(), GroupLevel("bogus")))
}
