package archive

import (
	"iter"

	"github.com/scoredlab/archivist/models"
)

// TimeSlice is a Source decorator that narrows every record to posts and
// comments created within [start, end] inclusive. Records left with neither
// posts nor comments are dropped entirely. Downstream consumers cannot tell
// a slice from a full archive.
type TimeSlice struct {
	src   Source
	start int64
	end   int64
}

// NewTimeSlice wraps any source with a time window. Slices nest: slicing a
// slice intersects the windows record by record.
func NewTimeSlice(src Source, start, end int64) *TimeSlice {
	return &TimeSlice{src: src, start: start, end: end}
}

// All traverses the underlying source, filtering in flight.
func (t *TimeSlice) All() iter.Seq2[string, models.Record] {
	return func(yield func(string, models.Record) bool) {
		for user, rec := range t.src.All() {
			filtered := models.Record{Author: rec.Author}

			for _, p := range rec.Posts {
				if t.start <= p.Created && p.Created <= t.end {
					filtered.Posts = append(filtered.Posts, p)
				}
			}
			for _, c := range rec.Comments {
				if t.start <= c.Created && c.Created <= t.end {
					filtered.Comments = append(filtered.Comments, c)
				}
			}

			if len(filtered.Posts) == 0 && len(filtered.Comments) == 0 {
				continue
			}
			if !yield(user, filtered) {
				return
			}
		}
	}
}
