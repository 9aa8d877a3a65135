package depot

import (
	"slices"
	"strconv"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// ParentComponentID is the id of the relationship component every World
// registers first. Its value is the EntityID of the parent.
const ParentComponentID ComponentID = 0

// edgeTriggered is implemented by conditions that can tell which of their
// components are read through JustAdded or JustRemoved.
type edgeTriggered interface {
	edgeComponents() []ComponentID
}

// edgeComponentsOf treats every component of a condition that does not
// report its edge reads as edge-triggered.
func edgeComponentsOf(c Condition) []ComponentID {
	if et, ok := c.(edgeTriggered); ok {
		return et.edgeComponents()
	}
	return c.Components()
}

type componentOp int

const (
	opIncludes componentOp = iota
	opExcludes
	opJustAdded
	opJustRemoved
)

var componentOpNames = [...]string{
	opIncludes:    "Includes",
	opExcludes:    "Excludes",
	opJustAdded:   "JustAdded",
	opJustRemoved: "JustRemoved",
}

type componentCondition struct {
	op   componentOp
	ids  []ComponentID
	bits mask.Mask
}

func newComponentCondition(op componentOp, components []ComponentType) *componentCondition {
	ids := make([]ComponentID, len(components))
	for i, c := range components {
		ids[i] = c.ID()
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return &componentCondition{op: op, ids: ids, bits: bitsOf(ids...)}
}

// Includes matches entities that carry every listed component.
func Includes(components ...ComponentType) Condition {
	return newComponentCondition(opIncludes, components)
}

// Excludes matches entities that carry none of the listed components.
func Excludes(components ...ComponentType) Condition {
	return newComponentCondition(opExcludes, components)
}

// JustAdded matches entities that gained every listed component in the
// previous tick.
func JustAdded(components ...ComponentType) Condition {
	return newComponentCondition(opJustAdded, components)
}

// JustRemoved matches entities that lost every listed component in the
// previous tick.
func JustRemoved(components ...ComponentType) Condition {
	return newComponentCondition(opJustRemoved, components)
}

func (c *componentCondition) Evaluate(e *Entity, _ Resolver) bool {
	if len(c.ids) == 0 {
		return true
	}
	switch c.op {
	case opIncludes:
		return e.archetype.containsAll(c.bits)
	case opExcludes:
		return e.archetype.containsNone(c.bits)
	case opJustAdded:
		return e.added.has(c.bits)
	case opJustRemoved:
		return e.removed.has(c.bits)
	}
	return false
}

func (c *componentCondition) Components() []ComponentID {
	return slices.Clone(c.ids)
}

func (c *componentCondition) edgeComponents() []ComponentID {
	if c.op != opJustAdded && c.op != opJustRemoved {
		return nil
	}
	return slices.Clone(c.ids)
}

func (c *componentCondition) Hash() string {
	var b strings.Builder
	b.WriteString(componentOpNames[c.op])
	b.WriteByte('(')
	for i, id := range c.ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	b.WriteByte(')')
	return b.String()
}

type compositeCondition struct {
	disjunction bool
	children    []Condition
	components  []ComponentID
}

func newCompositeCondition(disjunction bool, children []Condition) *compositeCondition {
	var ids []ComponentID
	for _, child := range children {
		ids = append(ids, child.Components()...)
	}
	slices.Sort(ids)
	return &compositeCondition{
		disjunction: disjunction,
		children:    children,
		components:  slices.Compact(ids),
	}
}

// All matches when every child matches. Evaluation stops at the first
// child that does not.
func All(children ...Condition) Condition {
	return newCompositeCondition(false, children)
}

// Any matches when at least one child matches. Evaluation stops at the
// first child that does.
func Any(children ...Condition) Condition {
	return newCompositeCondition(true, children)
}

func (c *compositeCondition) Evaluate(e *Entity, r Resolver) bool {
	for _, child := range c.children {
		if child.Evaluate(e, r) == c.disjunction {
			return c.disjunction
		}
	}
	return !c.disjunction
}

func (c *compositeCondition) Components() []ComponentID {
	return slices.Clone(c.components)
}

func (c *compositeCondition) edgeComponents() []ComponentID {
	var ids []ComponentID
	for _, child := range c.children {
		ids = append(ids, edgeComponentsOf(child)...)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (c *compositeCondition) Hash() string {
	name := "All"
	if c.disjunction {
		name = "Any"
	}
	hashes := make([]string, len(c.children))
	for i, child := range c.children {
		hashes[i] = child.Hash()
	}
	return name + "(" + strings.Join(hashes, ", ") + ")"
}

type parentCondition struct {
	inner      Condition
	components []ComponentID
}

// Parent evaluates inner against the entity's parent, found through the
// Parent relationship component. Entities without a live parent do not
// match.
func Parent(inner Condition) Condition {
	ids := append(inner.Components(), ParentComponentID)
	slices.Sort(ids)
	return &parentCondition{inner: inner, components: slices.Compact(ids)}
}

func (c *parentCondition) Evaluate(e *Entity, r Resolver) bool {
	if r == nil {
		return false
	}
	id, ok := r.ParentOf(e)
	if !ok {
		return false
	}
	parent, ok := r.Entity(id)
	if !ok {
		return false
	}
	return c.inner.Evaluate(parent, r)
}

func (c *parentCondition) Components() []ComponentID {
	return slices.Clone(c.components)
}

func (c *parentCondition) edgeComponents() []ComponentID {
	return edgeComponentsOf(c.inner)
}

func (c *parentCondition) Hash() string {
	return "Parent(" + c.inner.Hash() + ")"
}
