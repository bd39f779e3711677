package reactive

// WriteableSignal is a mutable leaf cell of the graph. Reads inside a
// running computation register a dependency edge; writes notify every
// current subscriber and schedule a flush.
type WriteableSignal[T any] struct {
	rs      *ReactiveSystem
	id      uint64
	value   T
	version uint64
	equals  func(a, b T) bool
	subs    []subscriber
	scope   *Scope

	disposed bool
}

var _ SignalAware = (*WriteableSignal[int])(nil)
var _ dependency = (*WriteableSignal[int])(nil)

// Signal creates a writeable signal without an equality function: every
// write counts as a change, even when the new value equals the old one.
func Signal[T any](rs *ReactiveSystem, value T) *WriteableSignal[T] {
	return SignalWithEquals(rs, value, nil)
}

// SignalWithEquals creates a writeable signal that skips notification when
// equals reports the incoming value as equal to the current one.
func SignalWithEquals[T any](rs *ReactiveSystem, value T, equals func(a, b T) bool) *WriteableSignal[T] {
	s := &WriteableSignal[T]{
		rs:     rs,
		id:     rs.newID(),
		value:  value,
		equals: equals,
		scope:  rs.activeScope,
	}
	if s.scope != nil {
		s.scope.own(s.dispose)
	}
	return s
}

// Eq returns the natural == comparison for comparable types, for use with
// SignalWithEquals and ComputedWithEquals.
func Eq[T comparable]() func(a, b T) bool {
	return func(a, b T) bool { return a == b }
}

func (s *WriteableSignal[T]) isSignalAware() {}

// Value reads the current value. Inside a running computation the read is
// tracked and the computation becomes a subscriber.
func (s *WriteableSignal[T]) Value() T {
	if s.disposed {
		panic(&DisposedHandleError{NodeID: s.id})
	}
	if sub := s.rs.activeSub; sub != nil {
		if sub.recordSource(s) {
			s.subscribe(sub)
		}
	}
	return s.value
}

// Peek reads the current value without registering a dependency.
func (s *WriteableSignal[T]) Peek() T {
	if s.disposed {
		panic(&DisposedHandleError{NodeID: s.id})
	}
	return s.value
}

// Version reports how many times the value has changed. Useful for cheap
// change detection without comparing values.
func (s *WriteableSignal[T]) Version() uint64 {
	if s.disposed {
		panic(&DisposedHandleError{NodeID: s.id})
	}
	return s.version
}

func (s *WriteableSignal[T]) SetValue(value T) {
	if s.disposed {
		panic(&DisposedHandleError{NodeID: s.id})
	}
	if s.equals != nil && s.equals(s.value, value) {
		return
	}
	s.value = value
	s.version++
	s.notify()
	s.rs.maybeFlush()
}

// Update applies fn to the current value and writes the result back. The
// read is untracked.
func (s *WriteableSignal[T]) Update(fn func(old T) T) {
	s.SetValue(fn(s.value))
}

// notify marks direct subscribers dirty. Iteration tolerates subscribers
// appended mid-walk; removal is deferred to unsubscribe.
func (s *WriteableSignal[T]) notify() {
	for _, sub := range s.subs {
		sub.stale(CacheDirty)
	}
}

func (s *WriteableSignal[T]) subscribe(sub subscriber) {
	s.subs = append(s.subs, sub)
}

func (s *WriteableSignal[T]) unsubscribe(sub subscriber) {
	for i, candidate := range s.subs {
		if candidate == sub {
			lastIdx := len(s.subs) - 1
			s.subs[i] = s.subs[lastIdx]
			s.subs[lastIdx] = nil
			s.subs = s.subs[:lastIdx]
			return
		}
	}
}

// updateIfNecessary satisfies dependency; a leaf signal is always current.
func (s *WriteableSignal[T]) updateIfNecessary() {}

func (s *WriteableSignal[T]) dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.subs = nil
}
