package depot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWorldPoisoned is returned by every tick after a tick has failed.
	// Nothing written during the failed tick can be trusted.
	ErrWorldPoisoned = errors.New("world is poisoned by a failed tick")

	// ErrTickInProgress is returned when a structural call is made while
	// systems are running. Systems must go through the command buffer.
	ErrTickInProgress = errors.New("operation not allowed while a tick is in progress")

	ErrAsyncBuffer    = errors.New("async command buffers are applied by the world; use Submit")
	ErrSyncBuffer     = errors.New("only async command buffers can be submitted")
	ErrDeferredCommit = errors.New("entity builder belongs to a command buffer and is created on Execute")
)

type ClosedBufferError struct{}

func (e ClosedBufferError) Error() string {
	return "command buffer is closed"
}

type UnknownEntityError struct {
	Entity EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %d cannot be found", e.Entity)
}

// PendingEntityError is returned for component changes queued against an
// entity created by the same buffer. Use the builder's Add instead.
type PendingEntityError struct {
	Entity EntityID
}

func (e PendingEntityError) Error() string {
	return fmt.Sprintf("entity %d is created by this buffer; add its components through the EntityBuilder", e.Entity)
}

type UnknownComponentError struct {
	Component ComponentID
}

func (e UnknownComponentError) Error() string {
	return fmt.Sprintf("component %d is not registered", e.Component)
}

type DuplicateComponentError struct {
	Name string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q is already registered", e.Name)
}

type ComponentLimitError struct {
	Limit int
}

func (e ComponentLimitError) Error() string {
	return fmt.Sprintf("component registry is full (%d)", e.Limit)
}

type CacheCapacityError struct {
	Capacity int
}

func (e CacheCapacityError) Error() string {
	return fmt.Sprintf("query cache at maximum capacity (%d)", e.Capacity)
}

type DuplicateSystemError struct {
	Name string
}

func (e DuplicateSystemError) Error() string {
	return fmt.Sprintf("system %q is already registered", e.Name)
}

// CycleError reports the chain of nodes that closes a circular dependency.
// The first and last entries are the same node.
type CycleError struct {
	Chain []string
}

func (e CycleError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Chain, " -> "))
}

// InvariantError signals a broken storage invariant. It is never a
// recoverable condition; the world that produced it must be discarded.
type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string {
	return "storage invariant violated: " + e.Reason
}

func invariantf(format string, args ...any) InvariantError {
	return InvariantError{Reason: fmt.Sprintf(format, args...)}
}
