package reactive_test

import (
	"fmt"
	"testing"

	"github.com/PhilipJohnBasile/philjs-sub012/reactive"
	"github.com/stretchr/testify/assert"
)

func TestTopologyDropAbaUpdates(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	//     A
	//   / |
	//  B  |
	//   \ |
	//     C
	//     |
	//     D
	a := reactive.Signal(rs, 2)
	b := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() - 1
	})
	c := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() + b.Value()
	})
	callCount := 0
	d := reactive.Computed(rs, func(oldValue string) string {
		callCount++
		return fmt.Sprintf("d: %d", c.Value())
	})

	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(4)
	assert.Equal(t, "d: 7", d.Value())
	assert.Equal(t, 2, callCount)
}

func TestTopologyDiamondUpdatesOnce(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	a := reactive.Signal(rs, 1)
	b := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() + 1
	})
	c := reactive.Computed(rs, func(oldValue int) int {
		return a.Value() * 10
	})
	callCount := 0
	d := reactive.Computed(rs, func(oldValue int) int {
		callCount++
		return b.Value() + c.Value()
	})

	assert.Equal(t, 12, d.Value())
	assert.Equal(t, 1, callCount)

	a.SetValue(2)
	assert.Equal(t, 23, d.Value())
	assert.Equal(t, 2, callCount)
}

func TestTopologyDeepChainSingleFlush(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	// head -> c1 -> c2 -> ... -> c50 -> effect
	head := reactive.Signal(rs, 0)
	current := reactive.Computed(rs, func(oldValue int) int {
		return head.Value() + 1
	})
	for i := 1; i < 50; i++ {
		prev := current
		current = reactive.Computed(rs, func(oldValue int) int {
			return prev.Value() + 1
		})
	}
	runs := 0
	tail := 0
	reactive.Effect(rs, func() (reactive.CleanupFunc, error) {
		tail = current.Value()
		runs++
		return nil, nil
	})
	assert.Equal(t, 1, runs)
	assert.Equal(t, 50, tail)

	head.SetValue(10)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 60, tail)
}

// should not recompute a branch whose intermediate value settled back
func TestTopologyCutoffMidChain(t *testing.T) {
	rs := reactive.CreateReactiveSystem(func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	//  A -> sign -> label
	a := reactive.Signal(rs, 5)
	sign := reactive.Computed(rs, func(oldValue int) int {
		if a.Value() >= 0 {
			return 1
		}
		return -1
	})
	labelRuns := 0
	label := reactive.Computed(rs, func(oldValue string) string {
		labelRuns++
		if sign.Value() > 0 {
			return "positive"
		}
		return "negative"
	})

	assert.Equal(t, "positive", label.Value())
	assert.Equal(t, 1, labelRuns)

	a.SetValue(9)
	assert.Equal(t, "positive", label.Value())
	assert.Equal(t, 1, labelRuns)

	a.SetValue(-9)
	assert.Equal(t, "negative", label.Value())
	assert.Equal(t, 2, labelRuns)
}

// should keep two systems fully independent
func TestTopologyIndependentSystems(t *testing.T) {
	onErr := func(from reactive.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	}
	rs1 := reactive.CreateReactiveSystem(onErr)
	rs2 := reactive.CreateReactiveSystem(onErr)

	a1 := reactive.Signal(rs1, 1)
	a2 := reactive.Signal(rs2, 100)
	runs1, runs2 := 0, 0
	reactive.Effect(rs1, func() (reactive.CleanupFunc, error) {
		a1.Value()
		runs1++
		return nil, nil
	})
	reactive.Effect(rs2, func() (reactive.CleanupFunc, error) {
		a2.Value()
		runs2++
		return nil, nil
	})

	rs1.StartBatch()
	a1.SetValue(2)
	// rs2 is not inside a batch, its effect flushes immediately
	a2.SetValue(200)
	assert.Equal(t, 1, runs1)
	assert.Equal(t, 2, runs2)
	rs1.EndBatch()
	assert.Equal(t, 2, runs1)
}
