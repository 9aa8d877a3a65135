package depot

import "slices"

// queryCache maps query hashes to registered queries and routes component
// ids to the queries that read them.
type queryCache struct {
	items       []*query
	itemIndices map[string]int
	byComponent map[ComponentID][]QueryID
	byEdge      map[ComponentID][]QueryID
	maxCapacity int
}

func newQueryCache(capacity int) *queryCache {
	return &queryCache{
		itemIndices: make(map[string]int),
		byComponent: make(map[ComponentID][]QueryID),
		byEdge:      make(map[ComponentID][]QueryID),
		maxCapacity: capacity,
	}
}

func (c *queryCache) GetIndex(hash string) (QueryID, bool) {
	index, ok := c.itemIndices[hash]
	return QueryID(index), ok
}

func (c *queryCache) GetItem(id QueryID) (*query, bool) {
	if int(id) >= len(c.items) {
		return nil, false
	}
	return c.items[id], true
}

func (c *queryCache) Register(q *query) (QueryID, error) {
	if len(c.items) >= c.maxCapacity {
		return 0, CacheCapacityError{Capacity: c.maxCapacity}
	}
	idx := len(c.items)
	q.id = QueryID(idx)
	c.itemIndices[q.hash] = idx
	c.items = append(c.items, q)
	for _, comp := range q.components {
		c.byComponent[comp] = append(c.byComponent[comp], q.id)
	}
	for _, comp := range q.edges {
		c.byEdge[comp] = append(c.byEdge[comp], q.id)
	}
	return q.id, nil
}

func (c *queryCache) Len() int {
	return len(c.items)
}

// collectStale collects the subscribers of every id into stale.
func collectStale(subscribers map[ComponentID][]QueryID, ids map[ComponentID]struct{}, stale map[QueryID]struct{}) {
	for id := range ids {
		for _, q := range subscribers[id] {
			stale[q] = struct{}{}
		}
	}
}

// stale resolves the set of query ids invalidated by deltas, the
// edge-triggered queries reading an expired id, and every population-bound
// query when the population changed. Ids come back ascending so
// recomputation order is deterministic.
func (c *queryCache) stale(deltas, expired map[ComponentID]struct{}, populationChanged bool) []QueryID {
	set := make(map[QueryID]struct{})
	collectStale(c.byComponent, deltas, set)
	collectStale(c.byEdge, expired, set)
	if populationChanged {
		for _, q := range c.items {
			if q.populationBound {
				set[q.id] = struct{}{}
			}
		}
	}
	out := make([]QueryID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
