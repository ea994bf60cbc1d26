package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Limits caps the size of a pipeline the Analyzer accepts. Zero means unlimited.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

// Analyzer classifies the shape of submitted pipelines.
// It holds only immutable configuration and is safe for concurrent use.
type Analyzer struct {
	limits Limits
}

// NewAnalyzer creates an Analyzer with the given limits.
func NewAnalyzer(limits Limits) *Analyzer {
	return &Analyzer{limits: limits}
}

// Analyze counts the submitted nodes and edges and reports whether the edge
// relation is acyclic. Counts are the literal list lengths, so duplicate ids
// are counted every time they appear.
//
// Any failure is returned as *AnalysisError; no partial result is ever returned.
func (a *Analyzer) Analyze(ctx context.Context, p *Pipeline) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &AnalysisError{Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	if p == nil {
		return nil, &AnalysisError{Cause: errors.New("no pipeline supplied")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &AnalysisError{Cause: err}
	}
	if a.limits.MaxNodes > 0 && len(p.Nodes) > a.limits.MaxNodes {
		return nil, &AnalysisError{Cause: fmt.Errorf("pipeline has %d nodes, limit is %d", len(p.Nodes), a.limits.MaxNodes)}
	}
	if a.limits.MaxEdges > 0 && len(p.Edges) > a.limits.MaxEdges {
		return nil, &AnalysisError{Cause: fmt.Errorf("pipeline has %d edges, limit is %d", len(p.Edges), a.limits.MaxEdges)}
	}

	res = &Result{
		NumNodes: len(p.Nodes),
		NumEdges: len(p.Edges),
		IsDAG:    true,
	}
	if len(p.Edges) == 0 {
		return res, nil
	}

	g := NewGraph(p)
	if err := ctx.Err(); err != nil {
		return nil, &AnalysisError{Cause: err}
	}
	res.IsDAG = !g.HasCycle()
	return res, nil
}
