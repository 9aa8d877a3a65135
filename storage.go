package depot

import (
	"slices"

	"go.uber.org/zap"
)

// Partition is the columnar block holding every entity of one archetype.
// Rows [0, Len) are live and dense; rows [Len, Cap) are free.
type Partition struct {
	archetype Archetype
	entities  []EntityID
	columns   []column // aligned with archetype ids, nil for tags
	index     map[EntityID]int
	length    int
	capacity  int

	occupied  bool
	emptiedAt uint64
}

func (p *Partition) Archetype() Archetype {
	return p.archetype
}

func (p *Partition) Len() int {
	return p.length
}

func (p *Partition) Cap() int {
	return p.capacity
}

func (p *Partition) Empty() bool {
	return p.length == 0
}

// EmptiedAt reports the tick at which the partition last lost its final
// row. It reports false for partitions that are occupied or never were.
func (p *Partition) EmptiedAt() (uint64, bool) {
	if p.length > 0 || !p.occupied {
		return 0, false
	}
	return p.emptiedAt, true
}

// Entities returns the live entity column in row order.
func (p *Partition) Entities() []EntityID {
	return slices.Clone(p.entities[:p.length])
}

func (p *Partition) Row(id EntityID) (int, bool) {
	row, ok := p.index[id]
	return row, ok
}

func (p *Partition) columnFor(id ComponentID) column {
	at, found := slices.BinarySearch(p.archetype.ids, id)
	if !found {
		return nil
	}
	return p.columns[at]
}

// DataStorage owns one partition per archetype seen so far. Partitions are
// never reclaimed; empty ones are tracked through EmptyPartitions.
type DataStorage struct {
	registry   *registry
	chunkSize  int
	partitions map[string]*Partition
	order      []*Partition
	clock      func() uint64
	log        *zap.Logger
}

func newDataStorage(reg *registry, chunkSize int, clock func() uint64, log *zap.Logger) *DataStorage {
	return &DataStorage{
		registry:   reg,
		chunkSize:  chunkSize,
		partitions: make(map[string]*Partition),
		clock:      clock,
		log:        log,
	}
}

// Partition returns the partition for the archetype, if one was created.
func (s *DataStorage) Partition(a Archetype) (*Partition, bool) {
	p, ok := s.partitions[a.key]
	return p, ok
}

// Partitions lists partitions in creation order.
func (s *DataStorage) Partitions() []*Partition {
	return slices.Clone(s.order)
}

// EmptyPartitions lists archetypes whose partitions hold no rows.
func (s *DataStorage) EmptyPartitions() []Archetype {
	var out []Archetype
	for _, p := range s.order {
		if p.Empty() {
			out = append(out, p.archetype)
		}
	}
	return out
}

func (s *DataStorage) partition(a Archetype) (*Partition, error) {
	if p, ok := s.partitions[a.key]; ok {
		return p, nil
	}
	p := &Partition{
		archetype: a,
		columns:   make([]column, len(a.ids)),
		index:     make(map[EntityID]int),
	}
	for i, id := range a.ids {
		desc, ok := s.registry.descriptor(id)
		if !ok {
			return nil, UnknownComponentError{Component: id}
		}
		if !desc.Tag {
			p.columns[i] = desc.newColumn(0)
		}
	}
	s.partitions[a.key] = p
	s.order = append(s.order, p)
	s.log.Debug("partition created", zap.Stringer("archetype", a))
	return p, nil
}

func (s *DataStorage) grow(p *Partition) {
	next := p.capacity + s.chunkSize
	entities := make([]EntityID, next)
	copy(entities, p.entities)
	p.entities = entities
	for _, col := range p.columns {
		if col != nil {
			col.grow(next)
		}
	}
	p.capacity = next
	s.log.Debug("partition grown",
		zap.Stringer("archetype", p.archetype),
		zap.Int("capacity", next),
	)
}

// allocate gives id the next free row of p.
func (s *DataStorage) allocate(p *Partition, id EntityID) (int, error) {
	if row, exists := p.index[id]; exists {
		return -1, invariantf("entity %d already maps to row %d of %s", id, row, p.archetype)
	}
	if p.length >= p.capacity {
		s.grow(p)
	}
	row := p.length
	if row >= p.capacity {
		return -1, invariantf("no free row for entity %d in %s after growth", id, p.archetype)
	}
	if p.entities[row] != 0 {
		return -1, invariantf("free row %d of %s still owned by entity %d", row, p.archetype, p.entities[row])
	}
	p.entities[row] = id
	p.index[id] = row
	p.length++
	p.occupied = true
	return row, nil
}

// vacate releases row and keeps the partition dense by moving the last
// live row into the hole.
func (s *DataStorage) vacate(p *Partition, id EntityID, row int) {
	delete(p.index, id)
	last := p.length - 1
	if row != last {
		moved := p.entities[last]
		p.entities[row] = moved
		for _, col := range p.columns {
			if col != nil {
				col.move(row, last)
			}
		}
		p.index[moved] = row
	}
	p.entities[last] = 0
	for _, col := range p.columns {
		if col != nil {
			col.clear(last)
		}
	}
	p.length--
	if p.length == 0 {
		p.emptiedAt = s.clock()
	}
}

// Insert places a new entity in the partition of a.
func (s *DataStorage) Insert(id EntityID, a Archetype) error {
	p, err := s.partition(a)
	if err != nil {
		return err
	}
	_, err = s.allocate(p, id)
	return err
}

// SetComponentData writes value into the component column of the entity's
// row, allocating a row first if the entity does not occupy one yet.
// Tag components have no column and are accepted as a no-op write.
func (s *DataStorage) SetComponentData(id EntityID, a Archetype, c ComponentID, value any) error {
	if !a.HasComponent(c) {
		return invariantf("component %d written outside archetype %s", c, a)
	}
	p, err := s.partition(a)
	if err != nil {
		return err
	}
	row, ok := p.index[id]
	if !ok {
		if row, err = s.allocate(p, id); err != nil {
			return err
		}
	}
	col := p.columnFor(c)
	if col == nil {
		return nil
	}
	if !col.set(row, value) {
		return invariantf("value of type %T does not fit component %d", value, c)
	}
	return nil
}

// TransferData moves an entity from the partition of prev to the partition
// of next, carrying over every component both archetypes share.
func (s *DataStorage) TransferData(id EntityID, prev, next Archetype) error {
	if prev.Equal(next) {
		return nil
	}
	src, ok := s.partitions[prev.key]
	if !ok {
		return invariantf("entity %d transferred from missing partition %s", id, prev)
	}
	srcRow, ok := src.index[id]
	if !ok {
		return invariantf("entity %d has no row in %s", id, prev)
	}
	dst, err := s.partition(next)
	if err != nil {
		return err
	}
	dstRow, err := s.allocate(dst, id)
	if err != nil {
		return err
	}
	for _, c := range prev.Overlap(next) {
		from, to := src.columnFor(c), dst.columnFor(c)
		if from == nil || to == nil {
			continue
		}
		if !to.copyRow(dstRow, from, srcRow) {
			return invariantf("column type of component %d differs between %s and %s", c, prev, next)
		}
	}
	s.vacate(src, id, srcRow)
	return nil
}

// Remove drops the entity's row from the partition of a.
func (s *DataStorage) Remove(id EntityID, a Archetype) error {
	p, ok := s.partitions[a.key]
	if !ok {
		return invariantf("entity %d removed from missing partition %s", id, a)
	}
	row, ok := p.index[id]
	if !ok {
		return invariantf("entity %d has no row in %s", id, a)
	}
	s.vacate(p, id, row)
	return nil
}

// Get returns the stored value of component c for the entity.
func (s *DataStorage) Get(id EntityID, a Archetype, c ComponentID) (any, bool) {
	col, row, ok := s.lookup(id, a, c)
	if !ok {
		return nil, false
	}
	return col.get(row), true
}

func (s *DataStorage) lookup(id EntityID, a Archetype, c ComponentID) (column, int, bool) {
	p, ok := s.partitions[a.key]
	if !ok {
		return nil, 0, false
	}
	row, ok := p.index[id]
	if !ok {
		return nil, 0, false
	}
	col := p.columnFor(c)
	if col == nil {
		return nil, 0, false
	}
	return col, row, true
}

// Verify checks that every index entry points at a live row owned by its
// entity, and that no row is claimed twice.
func (s *DataStorage) Verify() error {
	for _, p := range s.order {
		if len(p.index) != p.length {
			return invariantf("%s indexes %d entities but holds %d rows", p.archetype, len(p.index), p.length)
		}
		for id, row := range p.index {
			if row < 0 || row >= p.length {
				return invariantf("entity %d points at dead row %d of %s", id, row, p.archetype)
			}
			if p.entities[row] != id {
				return invariantf("row %d of %s owned by %d, indexed by %d", row, p.archetype, p.entities[row], id)
			}
		}
	}
	return nil
}
