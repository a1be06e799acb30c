// Package graph computes document importance from vault link structure.
//
// A Graph holds the directed "A links to B" relation between documents.
// Importance runs power-iteration PageRank over it; the resulting scores
// feed the scheduler's initial note difficulty. Scores are pass-scoped:
// the graph is rebuilt and importance recomputed once per sync pass.
package graph

import "sort"

// Graph is a directed graph of document names.
//
// Edges are deduplicated and self-links are dropped at insertion time.
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes map[string]struct{}
	out   map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		out:   make(map[string]map[string]struct{}),
	}
}

// Build constructs a graph with a node for every document and an edge for
// every link relation. Link targets that are not in docs are added as
// nodes too, so dangling references still participate in the computation.
func Build(docs []string, links map[string][]string) *Graph {
	g := New()
	for _, d := range docs {
		g.AddNode(d)
	}
	for from, targets := range links {
		g.AddNode(from)
		for _, to := range targets {
			g.AddEdge(from, to)
		}
	}
	return g
}

// AddNode ensures the named node exists.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge adds a directed edge from → to, creating either node as needed.
// Self-links are ignored; duplicate edges collapse to one.
func (g *Graph) AddEdge(from, to string) {
	if from == to {
		return
	}
	g.AddNode(from)
	g.AddNode(to)
	if g.out[from] == nil {
		g.out[from] = make(map[string]struct{})
	}
	g.out[from][to] = struct{}{}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// OutDegree returns the number of distinct outgoing edges from the node.
func (g *Graph) OutDegree(name string) int {
	return len(g.out[name])
}

// sortedNodes returns the node names in lexicographic order. Iteration
// order must be stable for the importance computation to be deterministic.
func (g *Graph) sortedNodes() []string {
	names := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
