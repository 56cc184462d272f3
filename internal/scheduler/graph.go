package scheduler

import "ganttcore/internal/core"

type edge struct {
	taskID string
	typ    core.LinkType
	lag    int
}

type graph struct {
	order      []string
	tasks      map[string]core.Task
	adjList    map[string][]edge // successors
	revAdjList map[string][]edge // predecessors
}

func buildGraph(tasks []core.Task, links []core.Link) *graph {
	g := &graph{
		order:      make([]string, 0, len(tasks)),
		tasks:      make(map[string]core.Task, len(tasks)),
		adjList:    make(map[string][]edge, len(tasks)),
		revAdjList: make(map[string][]edge, len(tasks)),
	}
	for _, t := range tasks {
		g.order = append(g.order, t.ID)
		g.tasks[t.ID] = t
		g.adjList[t.ID] = nil
		g.revAdjList[t.ID] = nil
	}
	for _, l := range links {
		if _, ok := g.tasks[l.Source]; !ok {
			continue
		}
		if _, ok := g.tasks[l.Target]; !ok {
			continue
		}
		typ := l.EffectiveType()
		g.adjList[l.Source] = append(g.adjList[l.Source], edge{taskID: l.Target, typ: typ, lag: l.Lag})
		g.revAdjList[l.Target] = append(g.revAdjList[l.Target], edge{taskID: l.Source, typ: typ, lag: l.Lag})
	}
	return g
}

// topologicalSort runs Kahn's algorithm, ties broken by original
// declaration order (spec.md §5).
func (g *graph) topologicalSort() (order []string, ok bool) {
	remaining := make(map[string]int, len(g.order))
	for _, id := range g.order {
		remaining[id] = len(g.revAdjList[id])
	}

	processed := make(map[string]bool, len(g.order))
	result := make([]string, 0, len(g.order))

	for len(result) < len(g.order) {
		progressed := false
		for _, id := range g.order {
			if processed[id] || remaining[id] != 0 {
				continue
			}
			result = append(result, id)
			processed[id] = true
			progressed = true
			for _, e := range g.adjList[id] {
				remaining[e.taskID]--
			}
		}
		if !progressed {
			return nil, false
		}
	}
	return result, true
}

// downstreamClosure returns id plus every task transitively reachable via
// successor edges from id, in topological order restricted to that set.
func (g *graph) downstreamClosure(id string) []string {
	visited := map[string]bool{id: true}
	var stack = []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.adjList[n] {
			if !visited[e.taskID] {
				visited[e.taskID] = true
				stack = append(stack, e.taskID)
			}
		}
	}

	full, ok := g.topologicalSort()
	if !ok {
		return nil
	}
	var closure []string
	for _, tid := range full {
		if visited[tid] {
			closure = append(closure, tid)
		}
	}
	return closure
}
