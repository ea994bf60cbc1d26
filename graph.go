package pipeline

// Graph is the request-scoped directed graph derived from a Pipeline.
// Vertices are every declared node id plus every edge endpoint, kept in
// first-seen order so traversals are deterministic.
type Graph struct {
	ids   []string
	index map[string]int
	adj   [][]int
	arcs  int
}

// NewGraph builds the directed graph for p. Duplicate node ids, duplicate
// edges and endpoints that name no declared node are all tolerated.
func NewGraph(p *Pipeline) *Graph {
	g := &Graph{index: make(map[string]int, len(p.Nodes))}
	for _, n := range p.Nodes {
		g.vertex(n.NodeID())
	}
	for _, e := range p.Edges {
		src, dst := e.Endpoints()
		g.AddArc(src, dst)
	}
	return g
}

func (g *Graph) vertex(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.index[id] = i
	g.ids = append(g.ids, id)
	g.adj = append(g.adj, nil)
	return i
}

// AddArc adds a directed arc from -> to, creating either vertex if needed.
func (g *Graph) AddArc(from, to string) {
	u := g.vertex(from)
	v := g.vertex(to)
	g.adj[u] = append(g.adj[u], v)
	g.arcs++
}

// VertexCount returns the number of distinct vertices.
func (g *Graph) VertexCount() int { return len(g.ids) }

// ArcCount returns the number of arcs, duplicates included.
func (g *Graph) ArcCount() int { return g.arcs }

// HasCycle reports whether the graph contains a directed cycle.
// It runs an iterative DFS so deep chains cannot exhaust the goroutine stack.
// A vertex that is reached while still on the DFS stack closes a cycle;
// a self-loop is the shortest such case.
func (g *Graph) HasCycle() bool {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	type frame struct {
		v    int
		next int
	}

	state := make([]uint8, len(g.ids))
	var stack []frame

	for root := range g.ids {
		if state[root] != unvisited {
			continue
		}
		state[root] = visiting
		stack = append(stack[:0], frame{v: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(g.adj[top.v]) {
				state[top.v] = visited
				stack = stack[:len(stack)-1]
				continue
			}
			w := g.adj[top.v][top.next]
			top.next++

			switch state[w] {
			case visiting:
				return true
			case unvisited:
				state[w] = visiting
				stack = append(stack, frame{v: w})
			}
		}
	}

	return false
}

// TopologicalOrder returns the vertices in an order where every arc points
// forward, using Kahn's algorithm. Ties are broken by first-seen order.
// Returns ErrCycleDetected if no such order exists.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make([]int, len(g.ids))
	for _, targets := range g.adj {
		for _, v := range targets {
			inDegree[v]++
		}
	}

	queue := make([]int, 0, len(g.ids))
	for v, d := range inDegree {
		if d == 0 {
			queue = append(queue, v)
		}
	}

	order := make([]string, 0, len(g.ids))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, g.ids[u])
		for _, v := range g.adj[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) != len(g.ids) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
