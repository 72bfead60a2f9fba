// Package graph provides a small weighted directed graph used by the
// discussion tree builder and the interaction network builder. Node ids are
// any comparable type (comment ids for trees, usernames for networks) and
// each node carries an attribute value.
package graph

// Edge is one weighted directed edge.
type Edge[N comparable] struct {
	From   N
	To     N
	Weight float64
}

// DiGraph is a weighted directed graph with per-node attributes.
// Not safe for concurrent mutation.
type DiGraph[N comparable, A any] struct {
	attrs map[N]A
	succ  map[N]map[N]float64
	pred  map[N]map[N]float64
}

// New returns an empty graph.
func New[N comparable, A any]() *DiGraph[N, A] {
	return &DiGraph[N, A]{
		attrs: make(map[N]A),
		succ:  make(map[N]map[N]float64),
		pred:  make(map[N]map[N]float64),
	}
}

// AddNode inserts or replaces a node and its attributes.
func (g *DiGraph[N, A]) AddNode(id N, attrs A) {
	g.attrs[id] = attrs
	if g.succ[id] == nil {
		g.succ[id] = make(map[N]float64)
	}
	if g.pred[id] == nil {
		g.pred[id] = make(map[N]float64)
	}
}

// AddEdge inserts or replaces a weighted edge. Endpoints missing from the
// node set are created with zero-value attributes.
func (g *DiGraph[N, A]) AddEdge(from, to N, weight float64) {
	var zero A
	if !g.HasNode(from) {
		g.AddNode(from, zero)
	}
	if !g.HasNode(to) {
		g.AddNode(to, zero)
	}
	g.succ[from][to] = weight
	g.pred[to][from] = weight
}

// HasNode reports whether the node exists.
func (g *DiGraph[N, A]) HasNode(id N) bool {
	_, ok := g.attrs[id]
	return ok
}

// Node returns a node's attributes.
func (g *DiGraph[N, A]) Node(id N) (A, bool) {
	a, ok := g.attrs[id]
	return a, ok
}

// Weight returns the weight of an edge, if present.
func (g *DiGraph[N, A]) Weight(from, to N) (float64, bool) {
	if m, ok := g.succ[from]; ok {
		w, ok := m[to]
		return w, ok
	}
	return 0, false
}

// NumNodes returns the node count.
func (g *DiGraph[N, A]) NumNodes() int {
	return len(g.attrs)
}

// NumEdges returns the edge count.
func (g *DiGraph[N, A]) NumEdges() int {
	n := 0
	for _, m := range g.succ {
		n += len(m)
	}
	return n
}

// Nodes returns all node ids in unspecified order.
func (g *DiGraph[N, A]) Nodes() []N {
	ids := make([]N, 0, len(g.attrs))
	for id := range g.attrs {
		ids = append(ids, id)
	}
	return ids
}

// Edges returns all edges in unspecified order.
func (g *DiGraph[N, A]) Edges() []Edge[N] {
	edges := make([]Edge[N], 0, g.NumEdges())
	for from, m := range g.succ {
		for to, w := range m {
			edges = append(edges, Edge[N]{From: from, To: to, Weight: w})
		}
	}
	return edges
}

// Successors returns the targets of a node's outgoing edges.
func (g *DiGraph[N, A]) Successors(id N) []N {
	out := make([]N, 0, len(g.succ[id]))
	for to := range g.succ[id] {
		out = append(out, to)
	}
	return out
}

// Predecessors returns the sources of a node's incoming edges.
func (g *DiGraph[N, A]) Predecessors(id N) []N {
	in := make([]N, 0, len(g.pred[id]))
	for from := range g.pred[id] {
		in = append(in, from)
	}
	return in
}

// InDegree returns the number of incoming edges.
func (g *DiGraph[N, A]) InDegree(id N) int {
	return len(g.pred[id])
}

// OutDegree returns the number of outgoing edges.
func (g *DiGraph[N, A]) OutDegree(id N) int {
	return len(g.succ[id])
}
