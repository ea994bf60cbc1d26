// Package pipeline classifies pipeline-editor graphs: it counts nodes and
// edges and reports whether the edge relation is a DAG.
package pipeline

// Pipeline is the graph submitted by the pipeline editor: nodes plus directed edges.
// Both lists are required but may be empty.
type Pipeline struct {
	Nodes []Node `json:"nodes" validate:"required,dive"`
	Edges []Edge `json:"edges" validate:"required,dive"`
}

// Node represents a vertex in the pipeline.
// Type, Position and Data are carried through and never interpreted by the analysis.
type Node struct {
	ID       *string        `json:"id" validate:"required"`
	Type     *string        `json:"type" validate:"required"`
	Position *Position      `json:"position" validate:"required"`
	Data     map[string]any `json:"data" validate:"required"`
}

// Position is the node's place on the editor canvas.
type Position struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// Edge represents a directed connection from Source to Target.
// Endpoints need not name a declared node. Handles are sub-ports on a node
// and are ignored by the analysis.
type Edge struct {
	ID           *string `json:"id" validate:"required"`
	Source       *string `json:"source" validate:"required"`
	Target       *string `json:"target" validate:"required"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// Result is the structural summary returned for a pipeline.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// NodeID returns the node identifier, or "" when it was not supplied.
func (n Node) NodeID() string {
	if n.ID == nil {
		return ""
	}
	return *n.ID
}

// Endpoints returns the edge's source and target identifiers.
func (e Edge) Endpoints() (source, target string) {
	if e.Source != nil {
		source = *e.Source
	}
	if e.Target != nil {
		target = *e.Target
	}
	return source, target
}

// NewNode builds a fully populated Node.
func NewNode(id, typ string, x, y float64, data map[string]any) Node {
	if data == nil {
		data = map[string]any{}
	}
	return Node{ID: &id, Type: &typ, Position: &Position{X: &x, Y: &y}, Data: data}
}

// NewEdge builds an Edge without handles.
func NewEdge(id, source, target string) Edge {
	return Edge{ID: &id, Source: &source, Target: &target}
}
