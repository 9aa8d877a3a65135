package depot

import (
	"fmt"
	"slices"
)

// Edge orders From before To.
type Edge[T comparable] struct {
	From, To T
}

// DependencyTree keeps a topological order over its nodes, recomputed on
// every change. Edges may name nodes that are not added yet; they apply
// once both ends exist. Nodes with no ordering between them keep the
// order they were added in.
type DependencyTree[T comparable] struct {
	nodes   []T
	present map[T]struct{}
	topDown map[T][]T
	ordered []T
}

func NewDependencyTree[T comparable]() *DependencyTree[T] {
	return &DependencyTree[T]{
		present: make(map[T]struct{}),
		topDown: make(map[T][]T),
	}
}

// Ordered returns the nodes in execution order.
func (t *DependencyTree[T]) Ordered() []T {
	return slices.Clone(t.ordered)
}

func (t *DependencyTree[T]) Has(node T) bool {
	_, ok := t.present[node]
	return ok
}

func (t *DependencyTree[T]) AddElement(node T) error {
	return t.Add(node)
}

// AddDependency orders from before to.
func (t *DependencyTree[T]) AddDependency(from, to T) error {
	return t.apply(nil, []Edge[T]{{From: from, To: to}})
}

// Add inserts node together with its edges. Either all of them take
// effect or, on a cycle, none do and the previous order stands.
func (t *DependencyTree[T]) Add(node T, edges ...Edge[T]) error {
	return t.apply([]T{node}, edges)
}

func (t *DependencyTree[T]) apply(nodes []T, edges []Edge[T]) error {
	nodesLen := len(t.nodes)
	edgeLens := make(map[T]int)

	for _, n := range nodes {
		if _, ok := t.present[n]; ok {
			continue
		}
		t.present[n] = struct{}{}
		t.nodes = append(t.nodes, n)
	}
	for _, e := range edges {
		deps, ok := t.topDown[e.From]
		if slices.Contains(deps, e.To) {
			continue
		}
		if _, saved := edgeLens[e.From]; !saved {
			if ok {
				edgeLens[e.From] = len(deps)
			} else {
				edgeLens[e.From] = -1
			}
		}
		t.topDown[e.From] = append(deps, e.To)
	}

	ordered, err := t.sort()
	if err != nil {
		for _, n := range t.nodes[nodesLen:] {
			delete(t.present, n)
		}
		t.nodes = t.nodes[:nodesLen]
		for from, n := range edgeLens {
			if n < 0 {
				delete(t.topDown, from)
			} else {
				t.topDown[from] = t.topDown[from][:n]
			}
		}
		return err
	}
	t.ordered = ordered
	return nil
}

// sort is a depth-first topological sort. Reaching a node that is on the
// current path closes a cycle.
func (t *DependencyTree[T]) sort() ([]T, error) {
	visited := make(map[T]bool, len(t.nodes))
	onPath := make(map[T]bool)
	path := make([]T, 0, len(t.nodes))
	sorted := make([]T, 0, len(t.nodes))

	var visit func(node T) error
	visit = func(node T) error {
		visited[node] = true
		onPath[node] = true
		path = append(path, node)

		deps := t.topDown[node]
		for i := len(deps) - 1; i >= 0; i-- {
			dep := deps[i]
			if _, ok := t.present[dep]; !ok {
				continue
			}
			if onPath[dep] {
				return cycleFrom(path, dep)
			}
			if visited[dep] {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		onPath[node] = false
		path = path[:len(path)-1]
		sorted = append(sorted, node)
		return nil
	}

	for i := len(t.nodes) - 1; i >= 0; i-- {
		if visited[t.nodes[i]] {
			continue
		}
		if err := visit(t.nodes[i]); err != nil {
			return nil, err
		}
	}
	slices.Reverse(sorted)
	return sorted, nil
}

func cycleFrom[T comparable](path []T, closing T) CycleError {
	start := slices.Index(path, closing)
	chain := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		chain = append(chain, fmt.Sprint(n))
	}
	chain = append(chain, fmt.Sprint(closing))
	return CycleError{Chain: chain}
}
