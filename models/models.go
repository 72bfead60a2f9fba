package models

import "encoding/json"

// Post represents one root post from a Scored archive shard. Absent JSON
// fields decode to zero values, so a partially populated line never errors.
type Post struct {
	ID         int    `json:"id"`
	UUID       string `json:"uuid"`
	Author     string `json:"author"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Community  string `json:"community"`
	Created    int64  `json:"created"`
	Score      int    `json:"score"`
	ScoreUp    int    `json:"score_up"`
	ScoreDown  int    `json:"score_down"`
	Type       string `json:"type"`
	Domain     string `json:"domain"`
	Link       string `json:"link"`
	IsLocked   bool   `json:"is_locked"`
	IsVideo    bool   `json:"is_video"`
	IsImage    bool   `json:"is_image"`
	IsStickied bool   `json:"is_stickied"`
	IsNsfw     bool   `json:"is_nsfw"`
	IsDeleted  bool   `json:"is_deleted"`
	IsRemoved  bool   `json:"is_removed"`
	IsEdited   bool   `json:"is_edited"`
	Awards     int    `json:"awards"`
}

// Comment represents one comment from a shard record. The comment id is
// unique within its record; 0 in InReplyToID means "replies to the post".
type Comment struct {
	ID              int    `json:"id"`
	UUID            string `json:"uuid"`
	Author          string `json:"author"`
	Content         string `json:"content"`
	Community       string `json:"community"`
	Created         int64  `json:"created"`
	Score           int    `json:"score"`
	ScoreUp         int    `json:"score_up"`
	ScoreDown       int    `json:"score_down"`
	InReplyToID     int    `json:"in_reply_to_id"`
	CommentParentID int    `json:"comment_parent_id"`
	IsStickied      bool   `json:"is_stickied"`
	IsDeleted       bool   `json:"is_deleted"`
	IsRemoved       bool   `json:"is_removed"`
	IsEdited        bool   `json:"is_edited"`
	Awards          int    `json:"awards"`
}

// Record is one shard line: at most one root post plus its comment thread.
// Records are transient; consumers copy out what they keep.
type Record struct {
	Author   string    `json:"author"`
	Posts    []Post    `json:"posts"`
	Comments []Comment `json:"comments"`
}

// Map returns the post as a generic mapping keyed by JSON field names.
// This is the boundary shape consumed by metadata filters.
func (p Post) Map() map[string]any {
	return toMap(p)
}

// Map returns the comment as a generic mapping keyed by JSON field names.
func (c Comment) Map() map[string]any {
	return toMap(c)
}

func toMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
