package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
)

func nodes(ids ...string) []pipeline.Node {
	out := make([]pipeline.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, pipeline.NewNode(id, "text", 0, 0, map[string]any{"label": id}))
	}
	return out
}

func TestAnalyze_Example(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{})
	res, err := a.Analyze(context.Background(), &pipeline.Pipeline{
		Nodes: nodes("1", "2"),
		Edges: []pipeline.Edge{pipeline.NewEdge("e1", "1", "2")},
	})
	require.NoError(t, err)
	assert.Equal(t, &pipeline.Result{NumNodes: 2, NumEdges: 1, IsDAG: true}, res)
}

func TestAnalyze_NoEdgesIsAlwaysDAG(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{})
	for _, n := range []int{0, 1, 5} {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		res, err := a.Analyze(context.Background(), &pipeline.Pipeline{Nodes: nodes(ids...), Edges: []pipeline.Edge{}})
		require.NoError(t, err)
		assert.Equal(t, n, res.NumNodes)
		assert.Zero(t, res.NumEdges)
		assert.True(t, res.IsDAG)
	}
}

func TestAnalyze_CountsAreListLengths(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{})
	res, err := a.Analyze(context.Background(), &pipeline.Pipeline{
		Nodes: nodes("a", "a", "a"),
		Edges: []pipeline.Edge{
			pipeline.NewEdge("e", "a", "b"),
			pipeline.NewEdge("e", "a", "b"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumNodes)
	assert.Equal(t, 2, res.NumEdges)
	assert.True(t, res.IsDAG)
}

func TestAnalyze_Shapes(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{})
	tests := []struct {
		name  string
		edges []pipeline.Edge
		dag   bool
	}{
		{"self loop", []pipeline.Edge{pipeline.NewEdge("e1", "A", "A")}, false},
		{"chain", []pipeline.Edge{
			pipeline.NewEdge("e1", "A", "B"),
			pipeline.NewEdge("e2", "B", "C"),
			pipeline.NewEdge("e3", "C", "D"),
		}, true},
		{"triangle", []pipeline.Edge{
			pipeline.NewEdge("e1", "A", "B"),
			pipeline.NewEdge("e2", "B", "C"),
			pipeline.NewEdge("e3", "C", "A"),
		}, false},
		{"undeclared endpoints", []pipeline.Edge{
			pipeline.NewEdge("e1", "X", "Y"),
		}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &pipeline.Pipeline{Nodes: nodes("A", "B", "C", "D"), Edges: tc.edges}
			first, err := a.Analyze(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tc.dag, first.IsDAG)

			second, err := a.Analyze(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestAnalyze_HandlesAreIgnored(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{})
	out, in := "out", "in"
	e := pipeline.NewEdge("e1", "A", "B")
	e.SourceHandle, e.TargetHandle = &out, &in

	res, err := a.Analyze(context.Background(), &pipeline.Pipeline{Nodes: nodes("A", "B"), Edges: []pipeline.Edge{e}})
	require.NoError(t, err)
	assert.True(t, res.IsDAG)
}

func TestAnalyze_Limits(t *testing.T) {
	a := pipeline.NewAnalyzer(pipeline.Limits{MaxNodes: 2, MaxEdges: 1})

	_, err := a.Analyze(context.Background(), &pipeline.Pipeline{Nodes: nodes("a", "b", "c")})
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrAnalysis)
	assert.EqualError(t, err, "Error analyzing pipeline: pipeline has 3 nodes, limit is 2")

	_, err = a.Analyze(context.Background(), &pipeline.Pipeline{Edges: []pipeline.Edge{
		pipeline.NewEdge("e1", "a", "b"),
		pipeline.NewEdge("e2", "b", "c"),
	}})
	assert.EqualError(t, err, "Error analyzing pipeline: pipeline has 2 edges, limit is 1")
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := pipeline.NewAnalyzer(pipeline.Limits{}).Analyze(ctx, &pipeline.Pipeline{})
	assert.Nil(t, res)

	var ae *pipeline.AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_NilPipeline(t *testing.T) {
	_, err := pipeline.NewAnalyzer(pipeline.Limits{}).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, pipeline.ErrAnalysis)
}

func TestAnalyze_PanicBecomesAnalysisError(t *testing.T) {
	// A nil context panics on the first ctx.Err call inside Analyze.
	var ctx context.Context

	res, err := pipeline.NewAnalyzer(pipeline.Limits{}).Analyze(ctx, &pipeline.Pipeline{})
	assert.Nil(t, res)

	var ae *pipeline.AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, pipeline.ErrAnalysis)
	assert.Contains(t, err.Error(), "Error analyzing pipeline: panic: ")
}

func TestValidationError_Message(t *testing.T) {
	err := &pipeline.ValidationError{Fields: []pipeline.FieldError{
		{Field: "edges[0].source", Message: "is required"},
		{Field: "nodes", Message: "is required"},
	}}
	assert.ErrorIs(t, err, pipeline.ErrValidation)
	assert.NotErrorIs(t, err, pipeline.ErrAnalysis)
	assert.Equal(t, "pipeline: invalid request: edges[0].source: is required; nodes: is required", err.Error())
}
