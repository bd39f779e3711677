package reactive_test

import (
	"fmt"
	"testing"

	"github.com/PhilipJohnBasile/philjs-sub012/reactive"
	"github.com/stretchr/testify/assert"
)

// should coalesce writes inside a batch into one effect run
func TestBatchCoalescesWrites(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	first := reactive.Signal(rs, "John")
	last := reactive.Signal(rs, "Smith")
	runs := 0
	var seen string
	reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
		seen = fmt.Sprintf("%s %s", first.Value(), last.Value())
		runs++
		return nil, nil
	})
	assert.Equal(t, 1, runs)

	rs.StartBatch()
	first.SetValue("Jane")
	last.SetValue("Doe")
	rs.EndBatch()
	assert.Equal(t, 2, runs)
	assert.Equal(t, "Jane Doe", seen)
}

// should never expose a half-updated pair to the effect
func TestBatchIsGlitchFree(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	count := reactive.Signal(rs, 1)
	doubled := reactive.Computed(rs, func(oldValue int) int {
		return count.Value() * 2
	})
	var sums []int
	reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
		sums = append(sums, count.Value()+doubled.Value())
		return nil, nil
	})
	assert.Equal(t, []int{3}, sums)

	// 4 + 8, observed exactly once, never 4 + 2
	count.SetValue(4)
	assert.Equal(t, []int{3, 12}, sums)
}

// should flatten nested batches into the outermost one
func TestBatchNested(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := reactive.Signal(rs, 1)
	b := reactive.Signal(rs, 1)
	runs := 0
	reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
		a.Value()
		b.Value()
		runs++
		return nil, nil
	})
	assert.Equal(t, 1, runs)

	rs.StartBatch()
	a.SetValue(2)
	rs.StartBatch()
	b.SetValue(2)
	rs.EndBatch()
	// inner end must not flush while the outer batch is open
	assert.Equal(t, 1, runs)
	rs.EndBatch()
	assert.Equal(t, 2, runs)
}

// should return the callback's result
func TestBatchReturnsValue(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := reactive.Signal(rs, 1)
	got := reactive.Batch(rs, func() int {
		a.SetValue(10)
		return a.Peek() * 2
	})
	assert.Equal(t, 20, got)
	assert.Equal(t, 10, a.Value())
}

// should let reads inside a batch observe earlier writes from the same batch
func TestBatchReadsSeeOwnWrites(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	count := reactive.Signal(rs, 1)
	doubled := reactive.Computed(rs, func(oldValue int) int {
		return count.Value() * 2
	})
	assert.Equal(t, 2, doubled.Value())

	reactive.Batch(rs, func() struct{} {
		count.SetValue(5)
		assert.Equal(t, 5, count.Value())
		assert.Equal(t, 10, doubled.Value())
		return struct{}{}
	})
}

// should dedupe an effect notified through several sources in one batch
func TestBatchDedupesEffect(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	//     a
	//   /   \
	//  b     c
	//   \   /
	//   effect
	a := reactive.Signal(rs, 1)
	b := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() + 1
	})
	c := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() * 10
	})
	runs := 0
	reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
		b.Value()
		c.Value()
		runs++
		return nil, nil
	})
	assert.Equal(t, 1, runs)

	rs.StartBatch()
	a.SetValue(2)
	a.SetValue(3)
	rs.EndBatch()
	assert.Equal(t, 2, runs)
}
