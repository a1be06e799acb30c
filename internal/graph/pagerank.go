package graph

import "math"

// PageRankConfig tunes the importance computation.
// Zero values produce the classic defaults; see field comments.
type PageRankConfig struct {
	Damping       float64 // zero → 0.85
	Epsilon       float64 // zero → 1e-6; convergence threshold on total absolute change
	MaxIterations int     // zero → 100
}

func (c PageRankConfig) withDefaults() PageRankConfig {
	if c.Damping == 0 {
		c.Damping = 0.85
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1e-6
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 100
	}
	return c
}

// Importance computes a normalized PageRank score per node.
//
// Classic power iteration: every node starts at 1/N; each round a node
// sends damping*score/outDegree along each outgoing edge, the mass held by
// dangling nodes (zero out-edges) is spread uniformly, and every node
// receives the (1-damping)/N baseline. Iteration stops when the total
// absolute change falls below Epsilon or after MaxIterations rounds.
//
// The returned scores sum to exactly 1 (renormalized after convergence).
// Output is deterministic for a fixed graph: nodes are processed in
// lexicographic order. An empty graph yields an empty map.
func (g *Graph) Importance(cfg PageRankConfig) map[string]float64 {
	cfg = cfg.withDefaults()

	names := g.sortedNodes()
	n := len(names)
	if n == 0 {
		return map[string]float64{}
	}

	index := make(map[string]int, n)
	for i, name := range names {
		index[name] = i
	}

	// Adjacency as index slices, targets in lexicographic order.
	targets := make([][]int, n)
	for i, name := range names {
		outs := g.out[name]
		if len(outs) == 0 {
			continue
		}
		ts := make([]int, 0, len(outs))
		for _, t := range names {
			if _, ok := outs[t]; ok {
				ts = append(ts, index[t])
			}
		}
		targets[i] = ts
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}

	next := make([]float64, n)
	base := (1 - cfg.Damping) / float64(n)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		// Mass held by dangling nodes is redistributed uniformly.
		dangling := 0.0
		for i := range scores {
			if len(targets[i]) == 0 {
				dangling += scores[i]
			}
		}

		for i := range next {
			next[i] = base + cfg.Damping*dangling/float64(n)
		}
		for i, ts := range targets {
			if len(ts) == 0 {
				continue
			}
			share := cfg.Damping * scores[i] / float64(len(ts))
			for _, t := range ts {
				next[t] += share
			}
		}

		delta := 0.0
		for i := range scores {
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if delta < cfg.Epsilon {
			break
		}
	}

	// Renormalize so the scores sum to exactly 1.
	total := 0.0
	for _, s := range scores {
		total += s
	}
	result := make(map[string]float64, n)
	for i, name := range names {
		result[name] = scores[i] / total
	}
	return result
}
