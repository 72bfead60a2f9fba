package archive

import (
	"fmt"
	"iter"
	"regexp"

	"github.com/scoredlab/archivist/filters"
	"github.com/scoredlab/archivist/models"
)

// TimeRange is an inclusive [Start, End] window on created timestamps.
type TimeRange struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window.
func (r TimeRange) Contains(ts int64) bool {
	return r.Start <= ts && ts <= r.End
}

// IterOptions are the optional filters shared by the post and comment
// iterators. Nil fields are no-ops.
type IterOptions struct {
	Text      filters.TextFilter
	Metadata  filters.MetadataFilter
	Users     map[string]struct{}
	TimeRange *TimeRange
}

// CommentRow is one comment paired with the post it appeared under.
type CommentRow struct {
	User    string
	Comment models.Comment
	Post    models.Post
}

// SearchHit is one text-search match. Exactly one of Post or Comment is
// set, selected by Kind.
type SearchHit struct {
	User    string
	Kind    string // "post" or "comment"
	Post    *models.Post
	Comment *models.Comment
}

// IterPosts lazily yields (user, post) pairs matching the options. The
// text predicate sees content and title together.
func IterPosts(src Source, opts IterOptions) iter.Seq2[string, models.Post] {
	return func(yield func(string, models.Post) bool) {
		for user, rec := range src.All() {
			if opts.Users != nil {
				if _, ok := opts.Users[user]; !ok {
					continue
				}
			}

			for _, post := range rec.Posts {
				if opts.TimeRange != nil && !opts.TimeRange.Contains(post.Created) {
					continue
				}
				if opts.Text != nil && !opts.Text(post.Content+" "+post.Title) {
					continue
				}
				if opts.Metadata != nil && !opts.Metadata(post.Map()) {
					continue
				}
				if !yield(user, post) {
					return
				}
			}
		}
	}
}

// IterComments lazily yields comments matching the options, each with its
// parent post. Comments from records without a post are not yielded.
func IterComments(src Source, opts IterOptions) iter.Seq[CommentRow] {
	return func(yield func(CommentRow) bool) {
		for user, rec := range src.All() {
			if opts.Users != nil {
				if _, ok := opts.Users[user]; !ok {
					continue
				}
			}
			if len(rec.Comments) == 0 || len(rec.Posts) == 0 {
				continue
			}

			parent := rec.Posts[0]
			for _, comment := range rec.Comments {
				if opts.TimeRange != nil && !opts.TimeRange.Contains(comment.Created) {
					continue
				}
				if opts.Text != nil && !opts.Text(comment.Content) {
					continue
				}
				if opts.Metadata != nil && !opts.Metadata(comment.Map()) {
					continue
				}
				if !yield(CommentRow{User: user, Comment: comment, Post: parent}) {
					return
				}
			}
		}
	}
}

// SearchText compiles pattern and lazily yields every post and comment
// whose text matches. Post text is content plus title.
func SearchText(src Source, pattern string, caseSensitive bool) (iter.Seq[SearchHit], error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}

	return func(yield func(SearchHit) bool) {
		for user, rec := range src.All() {
			for i := range rec.Posts {
				post := rec.Posts[i]
				if re.MatchString(post.Content + " " + post.Title) {
					if !yield(SearchHit{User: user, Kind: "post", Post: &post}) {
						return
					}
				}
			}
			for i := range rec.Comments {
				comment := rec.Comments[i]
				if re.MatchString(comment.Content) {
					if !yield(SearchHit{User: user, Kind: "comment", Comment: &comment}) {
						return
					}
				}
			}
		}
	}, nil
}
