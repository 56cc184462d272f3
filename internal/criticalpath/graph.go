// Package criticalpath computes forward/backward-pass CPM schedules over a
// task/link graph, in both strict (classical zero-slack) and flexible
// (single greedy min-slack chain) modes.
//
// The graph is represented as adjacency lists keyed by task ID, never as
// object references, so structural cycles in the link graph stay isolated
// from the task ownership tree (spec.md §9's cyclic-graph guidance).
package criticalpath

import "ganttcore/internal/core"

// edge is one directed dependency annotated with the information the
// forward/backward passes need to apply lag correctly.
type edge struct {
	taskID string
	typ    core.LinkType
	lag    int
}

// graph is the adjacency-list representation built once per
// CalculateCriticalPath call.
type graph struct {
	order      []string // original task declaration order
	tasks      map[string]core.Task
	adjList    map[string][]edge // taskID -> successors
	revAdjList map[string][]edge // taskID -> predecessors
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

// topologicalSort runs Kahn's algorithm, breaking ties by the graph's
// original task declaration order (spec.md §5's ordering guarantee), and
// reports ok=false if a cycle prevents a full ordering.
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
