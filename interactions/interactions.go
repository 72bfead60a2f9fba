// Package interactions derives reply relationships from a single record:
// directed actor→target edges and higher-order co-participation groups.
package interactions

import (
	"sort"

	"github.com/scoredlab/archivist/models"
)

// Interaction is a directed reply: Actor replied to Target's post or
// comment at Created (epoch millis).
type Interaction struct {
	Actor   string
	Target  string
	Created int64
}

// Group is a set of authors co-participating under the same post or the
// same parent comment. Authors are distinct and sorted ascending.
type Group struct {
	Authors []string
	Created int64
}

// GroupLevel selects how co-participation groups are formed.
type GroupLevel string

const (
	// LevelPost forms one group of everyone active under the post.
	LevelPost GroupLevel = "post"
	// LevelComment forms one group per distinct parent comment.
	LevelComment GroupLevel = "comment"
)

// Pairwise extracts directed reply interactions from one record. A record
// without posts or without comments yields nothing. Self-replies are kept;
// there is no dedup at this layer, callers count occurrences.
func Pairwise(rec models.Record) []Interaction {
	if len(rec.Comments) == 0 || len(rec.Posts) == 0 {
		return nil
	}

	post := rec.Posts[0]

	// id 0 is the root post author
	idToAuthor := map[int]string{0: post.Author}
	for _, c := range rec.Comments {
		idToAuthor[c.ID] = c.Author
	}

	var out []Interaction
	for _, c := range rec.Comments {
		target, ok := idToAuthor[c.InReplyToID]
		if !ok || target == "" || c.Author == "" {
			continue
		}
		out = append(out, Interaction{Actor: c.Author, Target: target, Created: c.Created})
	}
	return out
}

// Groups extracts higher-order interactions from one record. At LevelPost
// the single group is the root author plus every commenter; at LevelComment
// authors are grouped by their comment_parent_id. Every group carries the
// root post's created time, including comment-level groups — a known
// simplification inherited from the reference behavior.
func Groups(rec models.Record, level GroupLevel) []Group {
	if len(rec.Comments) == 0 || len(rec.Posts) == 0 {
		return nil
	}

	post := rec.Posts[0]
	when := post.Created

	members := make(map[int]map[string]struct{})
	add := func(parent int, author string) {
		if members[parent] == nil {
			members[parent] = make(map[string]struct{})
		}
		members[parent][author] = struct{}{}
	}

	switch level {
	case LevelPost:
		add(0, post.Author)
		for _, c := range rec.Comments {
			add(0, c.Author)
		}
	case LevelComment:
		for _, c := range rec.Comments {
			add(c.CommentParentID, c.Author)
		}
	default:
		return nil
	}

	// deterministic group order: by parent id
	parents := make([]int, 0, len(members))
	for pid := range members {
		parents = append(parents, pid)
	}
	sort.Ints(parents)

	groups := make([]Group, 0, len(parents))
	for _, pid := range parents {
		authors := make([]string, 0, len(members[pid]))
		for a := range members[pid] {
			authors = append(authors, a)
		}
		sort.Strings(authors)
		groups = append(groups, Group{Authors: authors, Created: when})
	}
	return groups
}
