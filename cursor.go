package depot

import "iter"

// Cursor walks the committed matches of a query. The match list is
// snapshotted on first use and released by Reset.
type Cursor struct {
	world *World
	query QueryID

	matched     []EntityID
	position    int
	initialized bool
}

func newCursor(w *World, id QueryID) *Cursor {
	return &Cursor{world: w, query: id}
}

func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.position < len(c.matched) {
		c.position++
		return true
	}
	c.Reset()
	return false
}

// Entity returns the entity the cursor currently points at.
func (c *Cursor) Entity() EntityID {
	if c.position == 0 || c.position > len(c.matched) {
		return 0
	}
	return c.matched[c.position-1]
}

func (c *Cursor) Entities() iter.Seq2[int, EntityID] {
	return func(yield func(int, EntityID) bool) {
		c.initialize()
		for i, id := range c.matched {
			if !yield(i, id) {
				break
			}
		}
		c.Reset()
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matched = c.world.QueryEntities(c.query)
	c.position = 0
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.matched = nil
	c.position = 0
	c.initialized = false
}

func (c *Cursor) Remaining() int {
	if !c.initialized {
		c.initialize()
	}
	return len(c.matched) - c.position
}

func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.initialize()
	}
	return len(c.matched)
}
