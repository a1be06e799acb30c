package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumScores(scores map[string]float64) float64 {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b") // duplicate collapses
	g.AddEdge("a", "a") // self-link dropped

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.OutDegree("a"))
	assert.Equal(t, 0, g.OutDegree("b"))
}

func TestBuild_LinkTargetsBecomeNodes(t *testing.T) {
	g := Build([]string{"a"}, map[string][]string{"a": {"missing"}})
	assert.Equal(t, 2, g.Len())
}

func TestImportance_EmptyGraph(t *testing.T) {
	scores := New().Importance(PageRankConfig{})
	assert.Empty(t, scores)
}

func TestImportance_SingleNode(t *testing.T) {
	g := New()
	g.AddNode("only")

	scores := g.Importance(PageRankConfig{})
	assert.InDelta(t, 1.0, scores["only"], 1e-9)
}

func TestImportance_SumsToOne(t *testing.T) {
	cases := []struct {
		name  string
		build func() *Graph
	}{
		{
			"chain with dangling tail",
			func() *Graph {
				g := New()
				g.AddEdge("a", "b")
				g.AddEdge("b", "c")
				return g
			},
		},
		{
			"cycle",
			func() *Graph {
				g := New()
				g.AddEdge("a", "b")
				g.AddEdge("b", "c")
				g.AddEdge("c", "a")
				return g
			},
		},
		{
			"disconnected nodes",
			func() *Graph {
				g := New()
				g.AddNode("a")
				g.AddNode("b")
				g.AddNode("c")
				return g
			},
		},
		{
			"hub and spokes",
			func() *Graph {
				g := New()
				for _, n := range []string{"a", "b", "c", "d"} {
					g.AddEdge(n, "hub")
				}
				return g
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scores := tc.build().Importance(PageRankConfig{})
			assert.InDelta(t, 1.0, sumScores(scores), 1e-9)
			for n, s := range scores {
				assert.Positive(t, s, "node %s", n)
			}
		})
	}
}

func TestImportance_HubOutranksSpokes(t *testing.T) {
	g := New()
	for _, n := range []string{"a", "b", "c", "d"} {
		g.AddEdge(n, "hub")
	}

	scores := g.Importance(PageRankConfig{})
	for _, n := range []string{"a", "b", "c", "d"} {
		assert.Greater(t, scores["hub"], scores[n])
	}
}

func TestImportance_CycleIsUniform(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	scores := g.Importance(PageRankConfig{})
	assert.InDelta(t, scores["a"], scores["b"], 1e-6)
	assert.InDelta(t, scores["b"], scores["c"], 1e-6)
}

func TestImportance_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		g.AddEdge("notes/alpha", "notes/beta")
		g.AddEdge("notes/beta", "notes/gamma")
		g.AddEdge("notes/gamma", "notes/alpha")
		g.AddEdge("notes/alpha", "notes/gamma")
		g.AddNode("orphan")
		return g
	}

	first := build().Importance(PageRankConfig{})
	for i := 0; i < 10; i++ {
		again := build().Importance(PageRankConfig{})
		require.Equal(t, first, again, "run %d differs", i)
	}
}

func TestImportance_MaxIterationsBounds(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	// Even with a single iteration allowed, the result is normalized.
	scores := g.Importance(PageRankConfig{MaxIterations: 1})
	assert.InDelta(t, 1.0, sumScores(scores), 1e-9)
}
