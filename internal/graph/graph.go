// Package graph resolves the dependency DAG over an index snapshot:
// explicit edges from the dependencies field, inferred edges from
// produces/requires capability tokens, cycle detection, and the
// ready/blocked classification used by schedulers.
package graph

import (
	"sort"

	"github.com/steveyegge/beans/internal/index"
	"github.com/steveyegge/beans/internal/types"
	"github.com/steveyegge/beans/internal/validation"
)

// Graph is an adjacency view over one index snapshot.
type Graph struct {
	byID  map[string]*index.Entry
	edges map[string][]string // bean -> edge targets (must-close-first)
}

// New builds the edge set. Inferred edges: for every token t in X.requires,
// X gains an edge to each closeable bean Y with t in Y.produces. Closed
// producers contribute nothing, which is how requiring beans become ready.
func New(idx *index.Index) *Graph {
	g := &Graph{
		byID:  make(map[string]*index.Entry, len(idx.Entries)),
		edges: make(map[string][]string),
	}
	for i := range idx.Entries {
		e := &idx.Entries[i]
		g.byID[e.ID] = e
	}

	// Token -> active producers.
	producers := make(map[string][]string)
	for i := range idx.Entries {
		e := &idx.Entries[i]
		if e.Status == types.StatusClosed {
			continue
		}
		for _, token := range e.Produces {
			producers[token] = append(producers[token], e.ID)
		}
	}

	for i := range idx.Entries {
		e := &idx.Entries[i]
		seen := make(map[string]bool)
		for _, dep := range e.Dependencies {
			if !seen[dep] {
				seen[dep] = true
				g.edges[e.ID] = append(g.edges[e.ID], dep)
			}
		}
		for _, token := range e.Requires {
			for _, producer := range producers[token] {
				if producer == e.ID || seen[producer] {
					continue
				}
				seen[producer] = true
				g.edges[e.ID] = append(g.edges[e.ID], producer)
			}
		}
		sort.Slice(g.edges[e.ID], func(a, b int) bool {
			return validation.NaturalCompare(g.edges[e.ID][a], g.edges[e.ID][b]) < 0
		})
	}
	return g
}

// Edges returns the outgoing edge targets for id (explicit plus inferred).
func (g *Graph) Edges(id string) []string { return g.edges[id] }

// WouldCycle reports whether adding the edge from->to closes a cycle, i.e.
// whether from is already reachable from to.
func (g *Graph) WouldCycle(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	stack := []string{to}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == from {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, g.edges[current]...)
	}
	return false
}

// color marks for the DFS below.
const (
	white = iota // unvisited
	grey         // on the current path
	black        // fully explored
)

// FindCycle returns the first cycle witnessed by a depth-first traversal
// with tri-colour marking, as an ordered path (first node repeated at the
// end), or nil when the edge set is acyclic.
func (g *Graph) FindCycle() []string {
	ids := make([]string, 0, len(g.byID))
	for id := range g.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return validation.NaturalCompare(ids[a], ids[b]) < 0 })

	colors := make(map[string]int, len(ids))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = grey
		path = append(path, id)
		for _, next := range g.edges[id] {
			switch colors[next] {
			case grey:
				// Back edge: slice the current path from next onward.
				start := 0
				for i, p := range path {
					if p == next {
						start = i
						break
					}
				}
				cycle = append(append([]string{}, path[start:]...), next)
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		colors[id] = black
		return false
	}

	for _, id := range ids {
		if colors[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}

// Ready reports whether the bean is schedulable: open, carries a verify
// command, and every edge target is closed. Beans without verify are goals
// and never ready.
func (g *Graph) Ready(id string) bool {
	e := g.byID[id]
	if e == nil || e.Status != types.StatusOpen || !e.HasVerify {
		return false
	}
	return !g.hasOpenEdge(id)
}

// Blocked reports whether the bean is open with at least one unclosed edge
// target.
func (g *Graph) Blocked(id string) bool {
	e := g.byID[id]
	if e == nil || e.Status != types.StatusOpen {
		return false
	}
	return g.hasOpenEdge(id)
}

func (g *Graph) hasOpenEdge(id string) bool {
	for _, dep := range g.edges[id] {
		target := g.byID[dep]
		if target == nil {
			continue // dangling reference; no edge is added
		}
		if target.Status != types.StatusClosed {
			return true
		}
	}
	return false
}

// ReadySet returns every ready bean in natural ID order.
func (g *Graph) ReadySet() []string { return g.selectIDs(g.Ready) }

// BlockedSet returns every blocked bean in natural ID order.
func (g *Graph) BlockedSet() []string { return g.selectIDs(g.Blocked) }

func (g *Graph) selectIDs(pred func(string) bool) []string {
	var out []string
	for id := range g.byID {
		if pred(id) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(a, b int) bool { return validation.NaturalCompare(out[a], out[b]) < 0 })
	return out
}

// FindPath returns one edge path from 'from' to 'to' (inclusive), or nil
// when 'to' is unreachable. Used to report the shape of a would-be cycle.
func (g *Graph) FindPath(from, to string) []string {
	visited := make(map[string]bool)
	var path []string
	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		path = append(path, id)
		if id == to {
			return true
		}
		for _, next := range g.edges[id] {
			if !visited[next] && visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if visit(from) {
		return append([]string{}, path...)
	}
	return nil
}

// Dependents computes the reverse adjacency for id on demand: beans whose
// edge set includes it.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for from, targets := range g.edges {
		for _, to := range targets {
			if to == id {
				out = append(out, from)
				break
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return validation.NaturalCompare(out[a], out[b]) < 0 })
	return out
}
