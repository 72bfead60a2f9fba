// Package stats computes per-user and per-community statistics from a
// single pass over a record source. Each call re-derives everything from
// scratch; there is no state shared across calls.
//
// Score and vote lists are retained until finalization because median, min
// and max need the full distribution. Memory therefore scales with total
// item count, which is the known ceiling of this design.
package stats

import (
	"iter"
	"math"
	"sort"

	"github.com/scoredlab/archivist/interactions"
	"github.com/scoredlab/archivist/models"
)

// Source is the record stream the accumulators consume. archive.Archive
// and its time slices satisfy it.
type Source interface {
	All() iter.Seq2[string, models.Record]
}

// UserStats is the finalized per-user statistics record. Pointer fields
// are null when the underlying data never materialized (no posts, no
// timestamps, zero denominators).
type UserStats struct {
	Username                  string   `json:"username"`
	TotalPosts                int      `json:"total_posts"`
	TotalComments             int      `json:"total_comments"`
	TotalInteractionsSent     int      `json:"total_interactions_sent"`
	TotalInteractionsReceived int      `json:"total_interactions_received"`
	Communities               []string `json:"communities"`
	NumCommunities            int      `json:"num_communities"`
	FirstActivity             *int64   `json:"first_activity"`
	LastActivity              *int64   `json:"last_activity"`
	ActivitySpanMs            *int64   `json:"activity_span_ms"`
	ActivitySpanDays          *float64 `json:"activity_span_days"`
	PostsDeleted              int      `json:"posts_deleted"`
	PostsRemoved              int      `json:"posts_removed"`
	CommentsDeleted           int      `json:"comments_deleted"`
	CommentsRemoved           int      `json:"comments_removed"`
	PostsStickied             int      `json:"posts_stickied"`
	CommentsStickied          int      `json:"comments_stickied"`
	PostsNsfw                 int      `json:"posts_nsfw"`
	TotalAwardsReceived       int      `json:"total_awards_received"`

	PostScoreMean   *float64 `json:"post_score_mean"`
	PostScoreMedian *float64 `json:"post_score_median"`
	PostScoreMin    *float64 `json:"post_score_min"`
	PostScoreMax    *float64 `json:"post_score_max"`
	PostScoreStd    *float64 `json:"post_score_std"`

	CommentScoreMean   *float64 `json:"comment_score_mean"`
	CommentScoreMedian *float64 `json:"comment_score_median"`
	CommentScoreMin    *float64 `json:"comment_score_min"`
	CommentScoreMax    *float64 `json:"comment_score_max"`
	CommentScoreStd    *float64 `json:"comment_score_std"`

	PostUpvoteMean      *float64 `json:"post_upvote_mean"`
	PostUpvoteMedian    *float64 `json:"post_upvote_median"`
	PostUpvoteTotal     int      `json:"post_upvote_total"`
	CommentUpvoteMean   *float64 `json:"comment_upvote_mean"`
	CommentUpvoteMedian *float64 `json:"comment_upvote_median"`
	CommentUpvoteTotal  int      `json:"comment_upvote_total"`

	PostDownvoteMean      *float64 `json:"post_downvote_mean"`
	PostDownvoteMedian    *float64 `json:"post_downvote_median"`
	PostDownvoteTotal     int      `json:"post_downvote_total"`
	CommentDownvoteMean   *float64 `json:"comment_downvote_mean"`
	CommentDownvoteMedian *float64 `json:"comment_downvote_median"`
	CommentDownvoteTotal  int      `json:"comment_downvote_total"`

	PostToCommentRatio *float64 `json:"post_to_comment_ratio"`
	DeletionRate       *float64 `json:"deletion_rate"`
	RemovalRate        *float64 `json:"removal_rate"`
	InteractionRatio   *float64 `json:"interaction_ratio"`
}

type userAccum struct {
	totalPosts           int
	totalComments        int
	interactionsSent     int
	interactionsReceived int
	communities          map[string]struct{}
	firstActivity        int64
	lastActivity         int64
	postsDeleted         int
	postsRemoved         int
	commentsDeleted      int
	commentsRemoved      int
	postsStickied        int
	commentsStickied     int
	postsNsfw            int
	totalAwards          int
	postScores           []float64
	commentScores        []float64
	postUpvotes          []float64
	postDownvotes        []float64
	commentUpvotes       []float64
	commentDownvotes     []float64
}

func newUserAccum() *userAccum {
	return &userAccum{
		communities:   make(map[string]struct{}),
		firstActivity: math.MaxInt64,
	}
}

func (u *userAccum) touchActivity(created int64) {
	if created <= 0 {
		return
	}
	if created < u.firstActivity {
		u.firstActivity = created
	}
	if created > u.lastActivity {
		u.lastActivity = created
	}
}

// Users runs one full pass over src and returns finalized statistics per
// user.
//
// Crediting rules are deliberately asymmetric: posts credit the record's
// owning user, comments credit their own author field, and interactions
// only increment counters for users that already have an entry from post
// or comment authorship in the pass so far. A user named purely by an
// interaction never gains an entry from it.
func Users(src Source) map[string]UserStats {
	acc := make(map[string]*userAccum)
	get := func(name string) *userAccum {
		u, ok := acc[name]
		if !ok {
			u = newUserAccum()
			acc[name] = u
		}
		return u
	}

	for user, rec := range src.All() {
		// the record owner gets an entry even if the record carries nothing
		owner := get(user)

		for _, post := range rec.Posts {
			owner.totalPosts++
			owner.communities[post.Community] = struct{}{}
			owner.touchActivity(post.Created)

			if post.IsDeleted {
				owner.postsDeleted++
			}
			if post.IsRemoved {
				owner.postsRemoved++
			}
			if post.IsStickied {
				owner.postsStickied++
			}
			if post.IsNsfw {
				owner.postsNsfw++
			}

			owner.postScores = append(owner.postScores, float64(post.Score))
			owner.postUpvotes = append(owner.postUpvotes, float64(post.ScoreUp))
			owner.postDownvotes = append(owner.postDownvotes, float64(post.ScoreDown))
			owner.totalAwards += post.Awards
		}

		for _, comment := range rec.Comments {
			if comment.Author == "" {
				continue
			}
			u := get(comment.Author)

			u.totalComments++
			u.communities[comment.Community] = struct{}{}
			u.touchActivity(comment.Created)

			if comment.IsDeleted {
				u.commentsDeleted++
			}
			if comment.IsRemoved {
				u.commentsRemoved++
			}
			if comment.IsStickied {
				u.commentsStickied++
			}

			u.commentScores = append(u.commentScores, float64(comment.Score))
			u.commentUpvotes = append(u.commentUpvotes, float64(comment.ScoreUp))
			u.commentDownvotes = append(u.commentDownvotes, float64(comment.ScoreDown))
			u.totalAwards += comment.Awards
		}

		for _, in := range interactions.Pairwise(rec) {
			if actor, ok := acc[in.Actor]; ok {
				actor.interactionsSent++
			}
			if target, ok := acc[in.Target]; ok {
				target.interactionsReceived++
			}
		}
	}

	final := make(map[string]UserStats, len(acc))
	for name, u := range acc {
		final[name] = finalizeUser(name, u)
	}
	return final
}

func finalizeUser(name string, u *userAccum) UserStats {
	s := UserStats{
		Username:                  name,
		TotalPosts:                u.totalPosts,
		TotalComments:             u.totalComments,
		TotalInteractionsSent:     u.interactionsSent,
		TotalInteractionsReceived: u.interactionsReceived,
		NumCommunities:            len(u.communities),
		PostsDeleted:              u.postsDeleted,
		PostsRemoved:              u.postsRemoved,
		CommentsDeleted:           u.commentsDeleted,
		CommentsRemoved:           u.commentsRemoved,
		PostsStickied:             u.postsStickied,
		CommentsStickied:          u.commentsStickied,
		PostsNsfw:                 u.postsNsfw,
		TotalAwardsReceived:       u.totalAwards,
	}

	s.Communities = make([]string, 0, len(u.communities))
	for c := range u.communities {
		s.Communities = append(s.Communities, c)
	}
	sort.Strings(s.Communities)

	if u.firstActivity != math.MaxInt64 {
		s.FirstActivity = i64ptr(u.firstActivity)
	}
	if u.lastActivity > 0 {
		s.LastActivity = i64ptr(u.lastActivity)
	}
	if s.FirstActivity != nil && s.LastActivity != nil {
		span := *s.LastActivity - *s.FirstActivity
		s.ActivitySpanMs = i64ptr(span)
		s.ActivitySpanDays = fptr(float64(span) / (1000 * 60 * 60 * 24))
	}

	if len(u.postScores) > 0 {
		d := describeList(u.postScores)
		s.PostScoreMean = fptr(d.mean)
		s.PostScoreMedian = fptr(d.median)
		s.PostScoreMin = fptr(d.min)
		s.PostScoreMax = fptr(d.max)
		s.PostScoreStd = fptr(d.std)
	}
	if len(u.commentScores) > 0 {
		d := describeList(u.commentScores)
		s.CommentScoreMean = fptr(d.mean)
		s.CommentScoreMedian = fptr(d.median)
		s.CommentScoreMin = fptr(d.min)
		s.CommentScoreMax = fptr(d.max)
		s.CommentScoreStd = fptr(d.std)
	}

	if len(u.postUpvotes) > 0 {
		d := describeList(u.postUpvotes)
		s.PostUpvoteMean = fptr(d.mean)
		s.PostUpvoteMedian = fptr(d.median)
		s.PostUpvoteTotal = int(d.total)
	}
	if len(u.commentUpvotes) > 0 {
		d := describeList(u.commentUpvotes)
		s.CommentUpvoteMean = fptr(d.mean)
		s.CommentUpvoteMedian = fptr(d.median)
		s.CommentUpvoteTotal = int(d.total)
	}
	if len(u.postDownvotes) > 0 {
		d := describeList(u.postDownvotes)
		s.PostDownvoteMean = fptr(d.mean)
		s.PostDownvoteMedian = fptr(d.median)
		s.PostDownvoteTotal = int(d.total)
	}
	if len(u.commentDownvotes) > 0 {
		d := describeList(u.commentDownvotes)
		s.CommentDownvoteMean = fptr(d.mean)
		s.CommentDownvoteMedian = fptr(d.median)
		s.CommentDownvoteTotal = int(d.total)
	}

	totalContent := u.totalPosts + u.totalComments
	if totalContent > 0 {
		s.PostToCommentRatio = fptr(float64(u.totalPosts) / float64(totalContent))
		s.DeletionRate = fptr(float64(u.postsDeleted+u.commentsDeleted) / float64(totalContent))
		s.RemovalRate = fptr(float64(u.postsRemoved+u.commentsRemoved) / float64(totalContent))
	}

	if total := u.interactionsSent + u.interactionsReceived; total > 0 {
		s.InteractionRatio = fptr(float64(u.interactionsSent) / float64(total))
	}

	return s
}
