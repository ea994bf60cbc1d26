package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/meikuraledutech/pipeline"
)

func main() {
	ctx := context.Background()
	analyzer := pipeline.NewAnalyzer(pipeline.Limits{})

	// ── A linear pipeline: input → llm → output ───────────────────────
	chain := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			pipeline.NewNode("input-1", "input", 0, 0, map[string]any{"inputName": "question"}),
			pipeline.NewNode("llm-1", "llm", 250, 0, map[string]any{"model": "gpt-4o"}),
			pipeline.NewNode("output-1", "output", 500, 0, map[string]any{"outputName": "answer"}),
		},
		Edges: []pipeline.Edge{
			pipeline.NewEdge("e1", "input-1", "llm-1"),
			pipeline.NewEdge("e2", "llm-1", "output-1"),
		},
	}
	analyze(ctx, analyzer, "chain", chain)

	// ── Close the loop: output feeds back into the llm ───────────────
	looped := &pipeline.Pipeline{
		Nodes: chain.Nodes,
		Edges: append(append([]pipeline.Edge{}, chain.Edges...), pipeline.NewEdge("e3", "output-1", "llm-1")),
	}
	analyze(ctx, analyzer, "looped", looped)

	// ── A node wired to itself ───────────────────────────────────────
	selfLoop := &pipeline.Pipeline{
		Nodes: []pipeline.Node{pipeline.NewNode("filter-1", "filter", 0, 0, nil)},
		Edges: []pipeline.Edge{pipeline.NewEdge("e1", "filter-1", "filter-1")},
	}
	analyze(ctx, analyzer, "self-loop", selfLoop)

	// ── An edge pointing at a node that was never declared ──────────
	dangling := &pipeline.Pipeline{
		Nodes: []pipeline.Node{pipeline.NewNode("text-1", "text", 0, 0, nil)},
		Edges: []pipeline.Edge{pipeline.NewEdge("e1", "text-1", "missing")},
	}
	analyze(ctx, analyzer, "dangling", dangling)

	// ── Topological order of the chain ───────────────────────────────
	order, err := pipeline.NewGraph(chain).TopologicalOrder()
	if err != nil {
		log.Fatalf("order: %v", err)
	}
	fmt.Println("\nchain order:")
	printJSON(order)
}

func analyze(ctx context.Context, a *pipeline.Analyzer, name string, p *pipeline.Pipeline) {
	res, err := a.Analyze(ctx, p)
	if err != nil {
		log.Fatalf("analyze %s: %v", name, err)
	}
	fmt.Printf("\n%s:\n", name)
	printJSON(res)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
