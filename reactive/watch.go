package reactive

// Watch observes a derived value and invokes cb whenever it changes. The
// source function runs tracked; cb runs untracked, so reads inside it do
// not become dependencies. cb fires once immediately with initial true,
// then once per change with the next and previous values.
func Watch[T comparable](rs *ReactiveSystem, source func() T, cb func(next, prev T, initial bool)) func() {
	var prev T
	first := true
	return Effect(rs, func() (CleanupFunc, error) {
		next := source()
		if first || next != prev {
			initial := first
			first = false
			old := prev
			prev = next
			rs.PauseTracking()
			cb(next, old, initial)
			rs.ResumeTracking()
		}
		return nil, nil
	})
}

// StoredValue is a plain mutable box with the signal read and write shape
// but no graph participation. Reads are never tracked and writes never
// notify.
type StoredValue[T any] struct {
	value T
}

func NewStoredValue[T any](value T) *StoredValue[T] {
	return &StoredValue[T]{value: value}
}

func (s *StoredValue[T]) Get() T {
	return s.value
}

func (s *StoredValue[T]) Set(value T) {
	s.value = value
}

func (s *StoredValue[T]) Update(fn func(old T) T) {
	s.value = fn(s.value)
}
