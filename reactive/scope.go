package reactive

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Scope owns the lifetime of every node created while it was active.
// Disposing a scope disposes its child scopes first, then every owned
// node, then runs the registered cleanups in registration order.
type Scope struct {
	rs       *ReactiveSystem
	parent   *Scope
	children mapset.Set[*Scope]
	owned    []func()
	cleanups []func()
	values   map[uint64]any
	disposed bool
}

func newScope(rs *ReactiveSystem, parent *Scope) *Scope {
	s := &Scope{
		rs:       rs,
		parent:   parent,
		children: mapset.NewThreadUnsafeSet[*Scope](),
	}
	if parent != nil {
		parent.children.Add(s)
	}
	return s
}

// Root runs fn inside a fresh scope and hands it that scope's dispose
// function. The scope nests under the currently active one, so disposing
// an enclosing scope disposes this one too.
func Root[T any](rs *ReactiveSystem, fn func(dispose func()) T) T {
	scope := newScope(rs, rs.activeScope)
	prev := rs.activeScope
	rs.activeScope = scope
	defer func() {
		rs.activeScope = prev
	}()
	return fn(scope.Dispose)
}

// OnCleanup registers fn on the active scope. Without an active scope the
// registration is dropped.
func OnCleanup(rs *ReactiveSystem, fn func()) {
	if rs.activeScope != nil {
		rs.activeScope.cleanups = append(rs.activeScope.cleanups, fn)
	}
}

func (s *Scope) own(dispose func()) {
	s.owned = append(s.owned, dispose)
}

// Dispose tears the scope down. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	// Snapshot first: each child unlinks itself from this set as it goes.
	for _, child := range s.children.ToSlice() {
		child.Dispose()
	}
	s.children.Clear()
	// Reverse creation order, so effects stop before the nodes they
	// observe go away.
	for i := len(s.owned) - 1; i >= 0; i-- {
		s.owned[i]()
	}
	s.owned = nil
	for _, cleanup := range s.cleanups {
		cleanup()
	}
	s.cleanups = nil
	if s.parent != nil {
		s.parent.children.Remove(s)
		s.parent = nil
	}
}

// Context carries a value down the scope tree without threading it through
// every computation. Use resolves against the nearest providing scope and
// falls back to the context's default.
type Context[T any] struct {
	rs           *ReactiveSystem
	id           uint64
	defaultValue T
}

func NewContext[T any](rs *ReactiveSystem, defaultValue T) *Context[T] {
	return &Context[T]{rs: rs, id: rs.newID(), defaultValue: defaultValue}
}

// Provide binds value on the active scope. Without an active scope the
// binding is dropped and Use keeps returning the default.
func (c *Context[T]) Provide(value T) {
	scope := c.rs.activeScope
	if scope == nil {
		return
	}
	if scope.values == nil {
		scope.values = make(map[uint64]any)
	}
	scope.values[c.id] = value
}

// Use walks from the active scope outward and returns the nearest
// provided value, or the default when no scope provides one.
func (c *Context[T]) Use() T {
	for scope := c.rs.activeScope; scope != nil; scope = scope.parent {
		if v, ok := scope.values[c.id]; ok {
			return v.(T)
		}
	}
	return c.defaultValue
}
