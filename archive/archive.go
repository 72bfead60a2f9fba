// Package archive reads a Scored dataset: a directory of per-user
// *.jsonl.gz shard files, each line one record (at most one post plus its
// comment thread). Traversals are lazy and restartable; every call re-opens
// the shards from the start, so no cursor is ever shared.
package archive

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/scoredlab/archivist/models"
)

const shardSuffix = ".jsonl.gz"

// shard lines hold a whole comment thread, so they can get large
const maxLineBytes = 16 * 1024 * 1024

var (
	recordsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivist_records_read_total",
		Help: "Number of records successfully decoded from shard files",
	})
	parseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivist_parse_errors_total",
		Help: "Number of shard lines skipped due to decode errors",
	})
	shardErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "archivist_shard_errors_total",
		Help: "Number of shard files skipped due to read errors",
	})
)

// Source is a restartable lazy sequence of (user, record) pairs. Both the
// Archive and its time-sliced views satisfy it.
type Source interface {
	All() iter.Seq2[string, models.Record]
}

// Archive is a handle on one dataset directory. Handles are independent;
// opening the same directory twice yields two unrelated cursors.
type Archive struct {
	path string
	log  *logrus.Logger
}

// Open validates the dataset directory and returns a handle on it.
func Open(path string, log *logrus.Logger) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("dataset path %s does not exist: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset path %s is not a directory", path)
	}
	return &Archive{path: path, log: log}, nil
}

// Users returns the set of known users, derived from shard filenames.
func (a *Archive) Users() map[string]struct{} {
	users := make(map[string]struct{})
	for _, path := range a.shardFiles() {
		users[userFromPath(path)] = struct{}{}
	}
	return users
}

// All returns a lazy traversal over every record in the dataset. Malformed
// lines and unreadable shards are logged and skipped, never fatal.
// Breaking out of the range closes the current shard cleanly.
func (a *Archive) All() iter.Seq2[string, models.Record] {
	return func(yield func(string, models.Record) bool) {
		for _, path := range a.shardFiles() {
			if !a.scanShard(path, yield) {
				return
			}
		}
	}
}

// TimeSlice returns a view of this archive restricted to [start, end]
// inclusive on created timestamps.
func (a *Archive) TimeSlice(start, end int64) Source {
	return NewTimeSlice(a, start, end)
}

func (a *Archive) shardFiles() []string {
	paths, err := filepath.Glob(filepath.Join(a.path, "*"+shardSuffix))
	if err != nil {
		// only reachable with a malformed pattern, which ours is not
		a.log.WithError(err).Error("Failed to list shard files")
		return nil
	}
	return paths
}

// scanShard streams one shard file through yield. Returns false when the
// consumer stopped early.
func (a *Archive) scanShard(path string, yield func(string, models.Record) bool) bool {
	user := userFromPath(path)

	f, err := os.Open(path)
	if err != nil {
		shardErrors.Inc()
		a.log.WithError(err).WithField("shard", path).Error("Failed to open shard, skipping")
		return true
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		shardErrors.Inc()
		a.log.WithError(err).WithField("shard", path).Error("Failed to read shard, skipping")
		return true
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec models.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			parseErrors.Inc()
			a.log.WithError(err).WithField("shard", path).Warn("Skipping malformed record")
			continue
		}

		recordsRead.Inc()
		if !yield(user, rec) {
			return false
		}
	}

	if err := scanner.Err(); err != nil {
		shardErrors.Inc()
		a.log.WithError(err).WithField("shard", path).Error("Shard read aborted, continuing with next")
	}
	return true
}

func userFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), shardSuffix)
}
