package archive

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoredlab/archivist/models"
)

func writeShard(t *testing.T, dir, user string, lines ...string) {
	t.Helper()

	f, err := os.Create(filepath.Join(dir, user+".jsonl.gz"))
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}

func testArchive(t *testing.T) *Archive {
	t.Helper()
	dir := t.TempDir()

	writeShard(t, dir, "alice",
		`{"posts":[{"id":0,"author":"alice","title":"first","content":"hello world","community":"intro","created":1000,"score":10}],`+
			`"comments":[{"id":1,"author":"bob","content":"hi alice","community":"intro","created":2000,"in_reply_to_id":0},`+
			`{"id":2,"author":"carol","content":"welcome","community":"intro","created":5000,"in_reply_to_id":1}]}`,
	)
	writeShard(t, dir, "bob",
		`{"posts":[{"id":0,"author":"bob","title":"rant","content":"numbers are hard","community":"meta","created":9000,"score":-2}],"comments":[]}`,
		`not valid json at all`,
		`{"posts":[],"comments":[{"id":5,"author":"dave","content":"orphaned","community":"meta","created":12000,"in_reply_to_id":0}]}`,
	)

	log := logrus.New()
	log.SetOutput(os.Stderr)

	a, err := Open(dir, log)
	require.NoError(t, err)
	return a
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), logrus.New())
	assert.Error(t, err)
}

func TestOpenFileNotDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Open(path, logrus.New())
	assert.Error(t, err)
}

func TestUsers(t *testing.T) {
	a := testArchive(t)

	users := a.Users()
	assert.Len(t, users, 2)
	assert.Contains(t, users, "alice")
	assert.Contains(t, users, "bob")
}

func TestAllSkipsMalformedLines(t *testing.T) {
	a := testArchive(t)

	count := 0
	byUser := make(map[string]int)
	for user, rec := range a.All() {
		count++
		byUser[user]++
		_ = rec
	}

	// 3 valid records; the malformed line in bob's shard is skipped
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, byUser["alice"])
	assert.Equal(t, 2, byUser["bob"])
}

func TestAllIsRestartable(t *testing.T) {
	a := testArchive(t)

	first := 0
	for range a.All() {
		first++
	}
	second := 0
	for range a.All() {
		second++
	}

	assert.Equal(t, first, second)
}

func TestAllEarlyBreak(t *testing.T) {
	a := testArchive(t)

	seen := 0
	for range a.All() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)

	// the source is still usable after an abandoned traversal
	total := 0
	for range a.All() {
		total++
	}
	assert.Equal(t, 3, total)
}

func TestTimeSlice(t *testing.T) {
	a := testArchive(t)

	var records []models.Record
	for _, rec := range a.TimeSlice(1000, 2000).All() {
		records = append(records, rec)
	}

	// only alice's record survives, trimmed to the window
	require.Len(t, records, 1)
	assert.Len(t, records[0].Posts, 1)
	assert.Len(t, records[0].Comments, 1)
	assert.Equal(t, "bob", records[0].Comments[0].Author)
}

func TestTimeSliceInclusiveBounds(t *testing.T) {
	a := testArchive(t)

	count := 0
	for _, rec := range a.TimeSlice(9000, 9000).All() {
		count++
		assert.Len(t, rec.Posts, 1)
		assert.Equal(t, "bob", rec.Posts[0].Author)
	}
	assert.Equal(t, 1, count)
}

func TestIterPosts(t *testing.T) {
	a := testArchive(t)

	var posts []models.Post
	for _, p := range IterPosts(a, IterOptions{}) {
		posts = append(posts, p)
	}
	assert.Len(t, posts, 2)
}

func TestIterPostsUserFilter(t *testing.T) {
	a := testArchive(t)

	for user := range IterPosts(a, IterOptions{Users: map[string]struct{}{"alice": {}}}) {
		assert.Equal(t, "alice", user)
	}
}

func TestIterPostsTimeAndText(t *testing.T) {
	a := testArchive(t)

	count := 0
	opts := IterOptions{
		TimeRange: &TimeRange{Start: 0, End: 5000},
		Text:      func(text string) bool { return strings.Contains(text, "hello") },
	}
	for _, p := range IterPosts(a, opts) {
		count++
		assert.Equal(t, "alice", p.Author)
	}
	assert.Equal(t, 1, count)
}

func TestIterPostsMetadataFilter(t *testing.T) {
	a := testArchive(t)

	count := 0
	opts := IterOptions{
		Metadata: func(m map[string]any) bool { return m["community"] == "meta" },
	}
	for _, p := range IterPosts(a, opts) {
		count++
		assert.Equal(t, "bob", p.Author)
	}
	assert.Equal(t, 1, count)
}

func TestIterCommentsCarriesParentPost(t *testing.T) {
	a := testArchive(t)

	count := 0
	for row := range IterComments(a, IterOptions{}) {
		count++
		assert.Equal(t, "alice", row.User)
		assert.Equal(t, "first", row.Post.Title)
	}

	// bob's comment-only record has no post, so its comment is not yielded
	assert.Equal(t, 2, count)
}

func TestSearchText(t *testing.T) {
	a := testArchive(t)

	hits, err := SearchText(a, "WELCOME", false)
	require.NoError(t, err)

	count := 0
	for hit := range hits {
		count++
		assert.Equal(t, "comment", hit.Kind)
		assert.Equal(t, "carol", hit.Comment.Author)
	}
	assert.Equal(t, 1, count)

	// case sensitive: no match
	hits, err = SearchText(a, "WELCOME", true)
	require.NoError(t, err)
	count = 0
	for range hits {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestSearchTextMatchesTitles(t *testing.T) {
	a := testArchive(t)

	hits, err := SearchText(a, "rant", false)
	require.NoError(t, err)

	count := 0
	for hit := range hits {
		count++
		assert.Equal(t, "post", hit.Kind)
		assert.Equal(t, "bob", hit.Post.Author)
	}
	assert.Equal(t, 1, count)
}

func TestSearchTextBadPattern(t *testing.T) {
	a := testArchive(t)

	_, err := SearchText(a, "(", false)
	assert.Error(t, err)
}
