package stats

import (
	"math"
	"time"

	"github.com/scoredlab/archivist/interactions"
)

// unknownCommunity is the bucket for items without a community field.
const unknownCommunity = "unknown"

// CommunityStats is the finalized per-community statistics record.
type CommunityStats struct {
	Community        string   `json:"community"`
	TotalPosts       int      `json:"total_posts"`
	TotalComments    int      `json:"total_comments"`
	TotalContent     int      `json:"total_content"`
	UniqueUsers      int      `json:"unique_users"`
	UniquePosters    int      `json:"unique_posters"`
	UniqueCommenters int      `json:"unique_commenters"`
	Interactions     int      `json:"interactions"`
	FirstActivity    *int64   `json:"first_activity"`
	LastActivity     *int64   `json:"last_activity"`
	ActivitySpanMs   *int64   `json:"activity_span_ms"`
	ActivitySpanDays *float64 `json:"activity_span_days"`
	PostsDeleted     int      `json:"posts_deleted"`
	PostsRemoved     int      `json:"posts_removed"`
	CommentsDeleted  int      `json:"comments_deleted"`
	CommentsRemoved  int      `json:"comments_removed"`
	PostsStickied    int      `json:"posts_stickied"`
	CommentsStickied int      `json:"comments_stickied"`
	PostsNsfw        int      `json:"posts_nsfw"`
	PostsLocked      int      `json:"posts_locked"`
	TotalAwards      int      `json:"total_awards"`

	ActiveMonths          int      `json:"active_months"`
	AvgMonthlyUsers       *float64 `json:"avg_monthly_users"`
	PeakMonthlyUsers      *int     `json:"peak_monthly_users"`
	AvgMonthlyPosters     *float64 `json:"avg_monthly_posters"`
	PeakMonthlyPosters    *int     `json:"peak_monthly_posters"`
	AvgMonthlyCommenters  *float64 `json:"avg_monthly_commenters"`
	PeakMonthlyCommenters *int     `json:"peak_monthly_commenters"`

	PostToCommentRatio *float64 `json:"post_to_comment_ratio"`
	DeletionRate       *float64 `json:"deletion_rate"`
	RemovalRate        *float64 `json:"removal_rate"`
	StickyRate         *float64 `json:"sticky_rate"`
	NsfwRate           *float64 `json:"nsfw_rate"`
	LockRate           *float64 `json:"lock_rate"`

	AvgPostsPerUser    *float64 `json:"avg_posts_per_user"`
	AvgCommentsPerUser *float64 `json:"avg_comments_per_user"`
	AvgContentPerUser  *float64 `json:"avg_content_per_user"`

	PostScoreMean     *float64 `json:"post_score_mean"`
	PostScoreMedian   *float64 `json:"post_score_median"`
	PostScoreMin      *float64 `json:"post_score_min"`
	PostScoreMax      *float64 `json:"post_score_max"`
	PostScoreStd      *float64 `json:"post_score_std"`
	PostUpvoteTotal   int      `json:"post_upvote_total"`
	PostDownvoteTotal int      `json:"post_downvote_total"`
	PostUpvoteMean    *float64 `json:"post_upvote_mean"`
	PostDownvoteMean  *float64 `json:"post_downvote_mean"`

	CommentScoreMean     *float64 `json:"comment_score_mean"`
	CommentScoreMedian   *float64 `json:"comment_score_median"`
	CommentScoreMin      *float64 `json:"comment_score_min"`
	CommentScoreMax      *float64 `json:"comment_score_max"`
	CommentScoreStd      *float64 `json:"comment_score_std"`
	CommentUpvoteTotal   int      `json:"comment_upvote_total"`
	CommentDownvoteTotal int      `json:"comment_downvote_total"`
	CommentUpvoteMean    *float64 `json:"comment_upvote_mean"`
	CommentDownvoteMean  *float64 `json:"comment_downvote_mean"`

	OverallScoreMean   *float64 `json:"overall_score_mean"`
	OverallScoreMedian *float64 `json:"overall_score_median"`
	OverallScoreStd    *float64 `json:"overall_score_std"`
}

type communityAccum struct {
	posts                 int
	comments              int
	uniqueUsers           map[string]struct{}
	uniquePosters         map[string]struct{}
	uniqueCommenters      map[string]struct{}
	interactions          int
	firstActivity         int64
	lastActivity          int64
	postsDeleted          int
	postsRemoved          int
	commentsDeleted       int
	commentsRemoved       int
	postsStickied         int
	commentsStickied      int
	postsNsfw             int
	postsLocked           int
	totalAwards           int
	postScores            []float64
	commentScores         []float64
	postUpvotes           []float64
	postDownvotes         []float64
	commentUpvotes        []float64
	commentDownvotes      []float64
	activeUsersByMonth    map[string]map[string]struct{}
	postAuthorsByMonth    map[string]map[string]struct{}
	commentAuthorsByMonth map[string]map[string]struct{}
}

func newCommunityAccum() *communityAccum {
	return &communityAccum{
		uniqueUsers:           make(map[string]struct{}),
		uniquePosters:         make(map[string]struct{}),
		uniqueCommenters:      make(map[string]struct{}),
		firstActivity:         math.MaxInt64,
		activeUsersByMonth:    make(map[string]map[string]struct{}),
		postAuthorsByMonth:    make(map[string]map[string]struct{}),
		commentAuthorsByMonth: make(map[string]map[string]struct{}),
	}
}

func (c *communityAccum) touchActivity(created int64) {
	if created <= 0 {
		return
	}
	if created < c.firstActivity {
		c.firstActivity = created
	}
	if created > c.lastActivity {
		c.lastActivity = created
	}
}

// monthKey buckets an epoch-millis timestamp into a UTC YYYY-MM key.
func monthKey(created int64) string {
	return time.UnixMilli(created).UTC().Format("2006-01")
}

func addToMonth(buckets map[string]map[string]struct{}, month, user string) {
	if buckets[month] == nil {
		buckets[month] = make(map[string]struct{})
	}
	buckets[month][user] = struct{}{}
}

// Communities runs one full pass over src and returns finalized statistics
// per community. Posts are attributed to the record's owning user while
// comments are attributed to their own author. Interactions count toward
// the first post's community; records without a post contribute their
// interactions to no community at all.
func Communities(src Source) map[string]CommunityStats {
	acc := make(map[string]*communityAccum)
	get := func(name string) *communityAccum {
		c, ok := acc[name]
		if !ok {
			c = newCommunityAccum()
			acc[name] = c
		}
		return c
	}
	bucket := func(community string) string {
		if community == "" {
			return unknownCommunity
		}
		return community
	}

	for user, rec := range src.All() {
		for _, post := range rec.Posts {
			c := get(bucket(post.Community))

			c.posts++
			c.uniqueUsers[user] = struct{}{}
			c.uniquePosters[user] = struct{}{}
			c.touchActivity(post.Created)

			if post.Created > 0 {
				month := monthKey(post.Created)
				addToMonth(c.activeUsersByMonth, month, user)
				addToMonth(c.postAuthorsByMonth, month, user)
			}

			if post.IsDeleted {
				c.postsDeleted++
			}
			if post.IsRemoved {
				c.postsRemoved++
			}
			if post.IsStickied {
				c.postsStickied++
			}
			if post.IsNsfw {
				c.postsNsfw++
			}
			if post.IsLocked {
				c.postsLocked++
			}

			c.postScores = append(c.postScores, float64(post.Score))
			c.postUpvotes = append(c.postUpvotes, float64(post.ScoreUp))
			c.postDownvotes = append(c.postDownvotes, float64(post.ScoreDown))
			c.totalAwards += post.Awards
		}

		for _, comment := range rec.Comments {
			c := get(bucket(comment.Community))

			c.comments++
			if comment.Author != "" {
				c.uniqueUsers[comment.Author] = struct{}{}
				c.uniqueCommenters[comment.Author] = struct{}{}
			}
			c.touchActivity(comment.Created)

			if comment.Created > 0 && comment.Author != "" {
				month := monthKey(comment.Created)
				addToMonth(c.activeUsersByMonth, month, comment.Author)
				addToMonth(c.commentAuthorsByMonth, month, comment.Author)
			}

			if comment.IsDeleted {
				c.commentsDeleted++
			}
			if comment.IsRemoved {
				c.commentsRemoved++
			}
			if comment.IsStickied {
				c.commentsStickied++
			}

			c.commentScores = append(c.commentScores, float64(comment.Score))
			c.commentUpvotes = append(c.commentUpvotes, float64(comment.ScoreUp))
			c.commentDownvotes = append(c.commentDownvotes, float64(comment.ScoreDown))
			c.totalAwards += comment.Awards
		}

		if n := len(interactions.Pairwise(rec)); n > 0 && len(rec.Posts) > 0 {
			get(bucket(rec.Posts[0].Community)).interactions += n
		}
	}

	final := make(map[string]CommunityStats, len(acc))
	for name, c := range acc {
		final[name] = finalizeCommunity(name, c)
	}
	return final
}

func finalizeCommunity(name string, c *communityAccum) CommunityStats {
	s := CommunityStats{
		Community:        name,
		TotalPosts:       c.posts,
		TotalComments:    c.comments,
		TotalContent:     c.posts + c.comments,
		UniqueUsers:      len(c.uniqueUsers),
		UniquePosters:    len(c.uniquePosters),
		UniqueCommenters: len(c.uniqueCommenters),
		Interactions:     c.interactions,
		PostsDeleted:     c.postsDeleted,
		PostsRemoved:     c.postsRemoved,
		CommentsDeleted:  c.commentsDeleted,
		CommentsRemoved:  c.commentsRemoved,
		PostsStickied:    c.postsStickied,
		CommentsStickied: c.commentsStickied,
		PostsNsfw:        c.postsNsfw,
		PostsLocked:      c.postsLocked,
		TotalAwards:      c.totalAwards,
		ActiveMonths:     len(c.activeUsersByMonth),
	}

	if c.firstActivity != math.MaxInt64 {
		s.FirstActivity = i64ptr(c.firstActivity)
	}
	if c.lastActivity > 0 {
		s.LastActivity = i64ptr(c.lastActivity)
	}
	if s.FirstActivity != nil && s.LastActivity != nil {
		span := *s.LastActivity - *s.FirstActivity
		s.ActivitySpanMs = i64ptr(span)
		s.ActivitySpanDays = fptr(float64(span) / (1000 * 60 * 60 * 24))
	}

	s.AvgMonthlyUsers, s.PeakMonthlyUsers = monthlyStats(c.activeUsersByMonth)
	s.AvgMonthlyPosters, s.PeakMonthlyPosters = monthlyStats(c.postAuthorsByMonth)
	s.AvgMonthlyCommenters, s.PeakMonthlyCommenters = monthlyStats(c.commentAuthorsByMonth)

	if s.TotalContent > 0 {
		s.PostToCommentRatio = fptr(float64(c.posts) / float64(s.TotalContent))
		s.DeletionRate = fptr(float64(c.postsDeleted+c.commentsDeleted) / float64(s.TotalContent))
		s.RemovalRate = fptr(float64(c.postsRemoved+c.commentsRemoved) / float64(s.TotalContent))
		s.StickyRate = fptr(float64(c.postsStickied+c.commentsStickied) / float64(s.TotalContent))
	}

	if c.posts > 0 {
		s.NsfwRate = fptr(float64(c.postsNsfw) / float64(c.posts))
		s.LockRate = fptr(float64(c.postsLocked) / float64(c.posts))
	}

	if s.UniqueUsers > 0 {
		s.AvgPostsPerUser = fptr(float64(c.posts) / float64(s.UniqueUsers))
		s.AvgCommentsPerUser = fptr(float64(c.comments) / float64(s.UniqueUsers))
		s.AvgContentPerUser = fptr(float64(s.TotalContent) / float64(s.UniqueUsers))
	}

	if len(c.postScores) > 0 {
		d := describeList(c.postScores)
		s.PostScoreMean = fptr(d.mean)
		s.PostScoreMedian = fptr(d.median)
		s.PostScoreMin = fptr(d.min)
		s.PostScoreMax = fptr(d.max)
		s.PostScoreStd = fptr(d.std)
		up := describeList(c.postUpvotes)
		down := describeList(c.postDownvotes)
		s.PostUpvoteTotal = int(up.total)
		s.PostDownvoteTotal = int(down.total)
		s.PostUpvoteMean = fptr(up.mean)
		s.PostDownvoteMean = fptr(down.mean)
	}

	if len(c.commentScores) > 0 {
		d := describeList(c.commentScores)
		s.CommentScoreMean = fptr(d.mean)
		s.CommentScoreMedian = fptr(d.median)
		s.CommentScoreMin = fptr(d.min)
		s.CommentScoreMax = fptr(d.max)
		s.CommentScoreStd = fptr(d.std)
		up := describeList(c.commentUpvotes)
		down := describeList(c.commentDownvotes)
		s.CommentUpvoteTotal = int(up.total)
		s.CommentDownvoteTotal = int(down.total)
		s.CommentUpvoteMean = fptr(up.mean)
		s.CommentDownvoteMean = fptr(down.mean)
	}

	allScores := make([]float64, 0, len(c.postScores)+len(c.commentScores))
	allScores = append(allScores, c.postScores...)
	allScores = append(allScores, c.commentScores...)
	if len(allScores) > 0 {
		d := describeList(allScores)
		s.OverallScoreMean = fptr(d.mean)
		s.OverallScoreMedian = fptr(d.median)
		s.OverallScoreStd = fptr(d.std)
	}

	return s
}

// monthlyStats reduces per-month user sets to an average and a peak size.
func monthlyStats(buckets map[string]map[string]struct{}) (*float64, *int) {
	if len(buckets) == 0 {
		return nil, nil
	}

	total, peak := 0, 0
	for _, users := range buckets {
		n := len(users)
		total += n
		if n > peak {
			peak = n
		}
	}
	return fptr(float64(total) / float64(len(buckets))), iptr(peak)
}
