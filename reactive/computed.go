package reactive

import "reflect"

// ReadonlySignal is a lazily cached computation. It re-evaluates only when
// read (or flushed into by a subscribing effect) after one of its sources
// changed, and it cuts propagation short when the recomputed value equals
// the cached one.
type ReadonlySignal[T any] struct {
	rs      *ReactiveSystem
	id      uint64
	getter  func(oldValue T) T
	value   T
	version uint64
	equals  func(a, b T) bool
	scope   *Scope

	state       CacheState
	initialized bool
	running     bool
	disposed    bool

	sources []dependency
	subs    []subscriber
}

var _ SignalAware = (*ReadonlySignal[int])(nil)
var _ dependency = (*ReadonlySignal[int])(nil)
var _ observer = (*ReadonlySignal[int])(nil)

// Computed creates a lazy cached computation. The getter receives the
// previously cached value. Equality defaults to reflect.DeepEqual so
// recomputations that land on the same value stop propagating.
func Computed[T any](rs *ReactiveSystem, getter func(oldValue T) T) *ReadonlySignal[T] {
	return ComputedWithEquals(rs, getter, func(a, b T) bool {
		return reflect.DeepEqual(a, b)
	})
}

func ComputedWithEquals[T any](rs *ReactiveSystem, getter func(oldValue T) T, equals func(a, b T) bool) *ReadonlySignal[T] {
	c := &ReadonlySignal[T]{
		rs:     rs,
		id:     rs.newID(),
		getter: getter,
		equals: equals,
		state:  CacheDirty,
		scope:  rs.activeScope,
	}
	if c.scope != nil {
		c.scope.own(c.dispose)
	}
	return c
}

func (c *ReadonlySignal[T]) isSignalAware() {}

// Value refreshes the cached value if anything upstream changed, then
// returns it. Inside a running computation the read is tracked.
func (c *ReadonlySignal[T]) Value() T {
	if c.disposed {
		panic(&DisposedHandleError{NodeID: c.id})
	}
	if c.running {
		panic(&CyclicDependencyError{NodeID: c.id})
	}
	c.updateIfNecessary()
	if sub := c.rs.activeSub; sub != nil {
		if sub.recordSource(c) {
			c.subscribe(sub)
		}
	}
	return c.value
}

// Peek refreshes and returns the value without registering a dependency.
func (c *ReadonlySignal[T]) Peek() T {
	if c.disposed {
		panic(&DisposedHandleError{NodeID: c.id})
	}
	if c.running {
		panic(&CyclicDependencyError{NodeID: c.id})
	}
	c.updateIfNecessary()
	return c.value
}

// Version reports how many times the cached value has actually changed.
func (c *ReadonlySignal[T]) Version() uint64 {
	if c.disposed {
		panic(&DisposedHandleError{NodeID: c.id})
	}
	return c.version
}

// updateIfNecessary settles the cache to clean. A checked node first asks
// its sources to settle; as soon as one of them turns this node dirty the
// walk stops and the node recomputes.
func (c *ReadonlySignal[T]) updateIfNecessary() {
	if c.state == CacheCheck {
		for _, src := range c.sources {
			src.updateIfNecessary()
			if c.state == CacheDirty {
				break
			}
		}
		if c.state == CacheCheck {
			c.state = CacheClean
		}
	}
	// update() settles the state on its own; a panicking getter leaves the
	// node dirty so the next read retries.
	if c.state == CacheDirty {
		c.update()
	}
}

// update re-runs the getter with fresh dependency tracking. Old edges are
// dropped first so sources read on an abandoned branch stop notifying. A
// panicking getter leaves the node dirty, so the next read retries.
func (c *ReadonlySignal[T]) update() {
	for _, src := range c.sources {
		src.unsubscribe(c)
	}
	c.sources = c.sources[:0]

	rs := c.rs
	prevSub := rs.activeSub
	prevScope := rs.activeScope
	rs.activeSub = c
	rs.activeScope = c.scope
	rs.computeDepth++
	c.running = true
	completed := false
	defer func() {
		c.running = false
		rs.computeDepth--
		rs.activeSub = prevSub
		rs.activeScope = prevScope
		if !completed {
			// keep the node dirty and the pending queue parked until the
			// panic finishes unwinding
			if c.state == CacheClean {
				c.state = CacheDirty
			}
			return
		}
		rs.maybeFlush()
	}()

	// drop to clean before the getter runs, so a write landing on one of
	// this memo's own sources mid-run re-marks it instead of being
	// clobbered after the fact
	c.state = CacheClean
	oldValue := c.value
	newValue := c.getter(oldValue)
	completed = true

	if c.initialized && c.equals != nil && c.equals(oldValue, newValue) {
		return
	}
	c.initialized = true
	c.value = newValue
	c.version++
	for _, sub := range c.subs {
		sub.setState(CacheDirty)
	}
}

// stale is the push half of invalidation. The first transition away from
// clean forwards a conservative check mark downstream; deeper marks only
// raise this node's own state.
func (c *ReadonlySignal[T]) stale(st CacheState) {
	if c.disposed {
		return
	}
	wasClean := c.state == CacheClean
	if st > c.state {
		c.state = st
	}
	if wasClean {
		for _, sub := range c.subs {
			sub.stale(CacheCheck)
		}
	}
}

func (c *ReadonlySignal[T]) setState(st CacheState) {
	if st > c.state {
		c.state = st
	}
}

func (c *ReadonlySignal[T]) recordSource(dep dependency) bool {
	for _, existing := range c.sources {
		if existing == dep {
			return false
		}
	}
	c.sources = append(c.sources, dep)
	return true
}

func (c *ReadonlySignal[T]) subscribe(sub subscriber) {
	c.subs = append(c.subs, sub)
}

func (c *ReadonlySignal[T]) unsubscribe(sub subscriber) {
	for i, candidate := range c.subs {
		if candidate == sub {
			lastIdx := len(c.subs) - 1
			c.subs[i] = c.subs[lastIdx]
			c.subs[lastIdx] = nil
			c.subs = c.subs[:lastIdx]
			return
		}
	}
}

func (c *ReadonlySignal[T]) dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for _, src := range c.sources {
		src.unsubscribe(c)
	}
	c.sources = nil
	c.subs = nil
}
