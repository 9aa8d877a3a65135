package depot

// Get reads the committed value of the component for an entity.
// It reports false when the entity is unknown or lacks the component.
func (c Component[T]) Get(w *World, id EntityID) (T, bool) {
	var zero T
	en, ok := w.entities[id]
	if !ok || !en.archetype.HasComponent(c.id) {
		return zero, false
	}
	col, row, ok := w.storage.lookup(id, en.archetype, c.id)
	if !ok {
		return zero, false
	}
	typed, ok := col.(*typedColumn[T])
	if !ok {
		return zero, false
	}
	return typed.data[row], true
}

// Has reports whether the entity currently carries the component.
func (c Component[T]) Has(w *World, id EntityID) bool {
	en, ok := w.entities[id]
	return ok && en.archetype.HasComponent(c.id)
}

func (t Tag) Has(w *World, id EntityID) bool {
	en, ok := w.entities[id]
	return ok && en.archetype.HasComponent(t.id)
}
