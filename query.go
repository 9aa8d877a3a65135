package depot

import (
	"slices"
	"strings"
)

// QueryID is the stable handle of a registered query.
type QueryID uint32

type query struct {
	id         QueryID
	hash       string
	conditions []Condition
	components []ComponentID
	// edges are the components read through JustAdded or JustRemoved.
	edges      []ComponentID

	// populationBound marks queries that no component delta reliably
	// reaches when entities appear or disappear: those an entity with no
	// components satisfies, and those that look through a parent.
	populationBound bool

	entities   []EntityID
	archetypes []Archetype
}

// queryHash is order independent: structurally equal condition lists share
// one hash.
func queryHash(conditions []Condition) string {
	hashes := make([]string, len(conditions))
	for i, c := range conditions {
		hashes[i] = c.Hash()
	}
	slices.Sort(hashes)
	return strings.Join(hashes, ", ")
}

func newQuery(conditions []Condition, r Resolver) *query {
	sorted := slices.Clone(conditions)
	slices.SortStableFunc(sorted, func(a, b Condition) int {
		return strings.Compare(a.Hash(), b.Hash())
	})
	var ids, edges []ComponentID
	for _, c := range sorted {
		ids = append(ids, c.Components()...)
		edges = append(edges, edgeComponentsOf(c)...)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	slices.Sort(edges)

	q := &query{
		hash:       queryHash(sorted),
		conditions: sorted,
		components: ids,
		edges:      slices.Compact(edges),
	}
	q.populationBound = q.matches(newEntity(0), r) || slices.Contains(ids, ParentComponentID)
	return q
}

func (q *query) matches(e *Entity, r Resolver) bool {
	for _, c := range q.conditions {
		if !c.Evaluate(e, r) {
			return false
		}
	}
	return true
}

// recalculate rescans every entity. Matches are kept in ascending id order.
func (q *query) recalculate(entities map[EntityID]*Entity, r Resolver) {
	q.entities = q.entities[:0]
	seen := make(map[string]struct{})
	q.archetypes = q.archetypes[:0]
	for id, e := range entities {
		if !q.matches(e, r) {
			continue
		}
		q.entities = append(q.entities, id)
		if _, ok := seen[e.archetype.key]; !ok {
			seen[e.archetype.key] = struct{}{}
			q.archetypes = append(q.archetypes, e.archetype)
		}
	}
	slices.Sort(q.entities)
	slices.SortFunc(q.archetypes, func(a, b Archetype) int {
		return strings.Compare(a.key, b.key)
	})
}
