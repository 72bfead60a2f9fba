// Package trees builds discussion trees: the reply graph rooted at a
// record's post, with comments attached by their in_reply_to_id.
package trees

import (
	"github.com/scoredlab/archivist/graph"
	"github.com/scoredlab/archivist/models"
)

// Node types stored on tree nodes.
const (
	NodePost    = "post"
	NodeComment = "comment"
)

// NodeAttrs describes one tree node. With minimal attributes only
// NodeType, Author and Created are populated.
type NodeAttrs struct {
	NodeType    string `json:"node_type"`
	Author      string `json:"author"`
	Content     string `json:"content,omitempty"`
	Title       string `json:"title,omitempty"`
	Created     int64  `json:"created"`
	Score       int    `json:"score,omitempty"`
	ScoreUp     int    `json:"score_up,omitempty"`
	ScoreDown   int    `json:"score_down,omitempty"`
	Community   string `json:"community,omitempty"`
	IsDeleted   bool   `json:"is_deleted,omitempty"`
	IsRemoved   bool   `json:"is_removed,omitempty"`
	IsStickied  bool   `json:"is_stickied,omitempty"`
	IsNsfw      bool   `json:"is_nsfw,omitempty"`
	IsLocked    bool   `json:"is_locked,omitempty"`
	Awards      int    `json:"awards,omitempty"`
	InReplyToID int    `json:"in_reply_to_id,omitempty"`
}

// Tree is a discussion tree. Node 0 is the root post, every other node id
// is a comment id. Edge weights are reply latencies in seconds.
type Tree = *graph.DiGraph[int, NodeAttrs]

// Build constructs the discussion tree for one record. A record without a
// post yields an empty tree. A comment whose in_reply_to_id resolves to no
// node in the tree stays as a disconnected node rather than being dropped.
func Build(rec models.Record, includeAttrs bool) Tree {
	g := graph.New[int, NodeAttrs]()

	if len(rec.Posts) == 0 {
		return g
	}
	post := rec.Posts[0]

	if includeAttrs {
		g.AddNode(0, NodeAttrs{
			NodeType:   NodePost,
			Author:     post.Author,
			Content:    post.Content,
			Title:      post.Title,
			Created:    post.Created,
			Score:      post.Score,
			ScoreUp:    post.ScoreUp,
			ScoreDown:  post.ScoreDown,
			Community:  post.Community,
			IsDeleted:  post.IsDeleted,
			IsRemoved:  post.IsRemoved,
			IsStickied: post.IsStickied,
			IsNsfw:     post.IsNsfw,
			IsLocked:   post.IsLocked,
			Awards:     post.Awards,
		})
	} else {
		g.AddNode(0, NodeAttrs{NodeType: NodePost, Author: post.Author, Created: post.Created})
	}

	if len(rec.Comments) == 0 {
		return g
	}

	// all comment nodes go in before any edge, so edge insertion only has
	// to check the assembled node set
	for _, c := range rec.Comments {
		if includeAttrs {
			g.AddNode(c.ID, NodeAttrs{
				NodeType:    NodeComment,
				Author:      c.Author,
				Content:     c.Content,
				Created:     c.Created,
				Score:       c.Score,
				ScoreUp:     c.ScoreUp,
				ScoreDown:   c.ScoreDown,
				Community:   c.Community,
				IsDeleted:   c.IsDeleted,
				IsRemoved:   c.IsRemoved,
				IsStickied:  c.IsStickied,
				Awards:      c.Awards,
				InReplyToID: c.InReplyToID,
			})
		} else {
			g.AddNode(c.ID, NodeAttrs{NodeType: NodeComment, Author: c.Author, Created: c.Created})
		}
	}

	for _, c := range rec.Comments {
		parent, ok := g.Node(c.InReplyToID)
		if !ok {
			continue
		}
		g.AddEdge(c.InReplyToID, c.ID, timeDiffSeconds(parent.Created, c.Created))
	}

	return g
}

// timeDiffSeconds converts the parent→child latency from millis to
// seconds, clamped at 0. Non-positive timestamps contribute nothing.
func timeDiffSeconds(parentCreated, childCreated int64) float64 {
	if parentCreated <= 0 || childCreated <= 0 {
		return 0
	}
	diff := childCreated - parentCreated
	if diff <= 0 {
		return 0
	}
	return float64(diff) / 1000
}
