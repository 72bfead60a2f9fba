// Package network folds per-record reply interactions into a weighted
// directed graph of users.
package network

import (
	"iter"

	"github.com/scoredlab/archivist/graph"
	"github.com/scoredlab/archivist/interactions"
	"github.com/scoredlab/archivist/models"
)

// Source is the record stream the builder consumes.
type Source interface {
	All() iter.Seq2[string, models.Record]
}

// TimeRange is an inclusive window on interaction timestamps.
type TimeRange struct {
	Start int64
	End   int64
}

// Options restrict which interactions enter the network. Zero-value fields
// are no-ops; MinInteractions below 1 is treated as 1.
type Options struct {
	// TimeRange keeps only interactions whose timestamp falls inside it.
	TimeRange *TimeRange
	// Users keeps only records owned by, and edges between, these users.
	Users map[string]struct{}
	// MinInteractions is the minimum edge weight to materialize. An edge
	// with weight exactly equal to it is included.
	MinInteractions int
}

// Graph is the interaction network: nodes are usernames, edge weights are
// reply counts. Users without a qualifying edge have no node.
type Graph = *graph.DiGraph[string, struct{}]

type pair struct {
	actor  string
	target string
}

// Build drives the source once and returns the filtered, thresholded
// network. Repeated replies between the same pair accumulate weight.
func Build(src Source, opts Options) Graph {
	minWeight := opts.MinInteractions
	if minWeight < 1 {
		minWeight = 1
	}

	inUsers := func(name string) bool {
		if opts.Users == nil {
			return true
		}
		_, ok := opts.Users[name]
		return ok
	}

	weights := make(map[pair]int)
	for user, rec := range src.All() {
		if !inUsers(user) {
			continue
		}

		for _, in := range interactions.Pairwise(rec) {
			if opts.TimeRange != nil &&
				!(opts.TimeRange.Start <= in.Created && in.Created <= opts.TimeRange.End) {
				continue
			}
			if !inUsers(in.Actor) || !inUsers(in.Target) {
				continue
			}
			weights[pair{actor: in.Actor, target: in.Target}]++
		}
	}

	g := graph.New[string, struct{}]()
	for p, w := range weights {
		if w >= minWeight {
			g.AddEdge(p.actor, p.target, float64(w))
		}
	}
	return g
}
