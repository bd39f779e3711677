package reactive

import "fmt"

// CyclicDependencyError reports a computation that re-entered its own
// execution, directly or transitively. It is raised as a panic at the
// offending read; the node is left dirty so a later, non-cyclic trigger
// can retry.
type CyclicDependencyError struct {
	NodeID uint64
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("reactive: cyclic dependency on node %d", e.NodeID)
}

// DisposedHandleError reports a read or write on a signal or computed whose
// owning scope already disposed it. Raised as a panic at the offending
// call.
type DisposedHandleError struct {
	NodeID uint64
}

func (e *DisposedHandleError) Error() string {
	return fmt.Sprintf("reactive: use of disposed node %d", e.NodeID)
}

// RunawayFlushError reports an effect that was re-enqueued more times in a
// single flush than the sanity bound allows, usually an effect writing a
// signal it also depends on. Raised as a panic; the flush aborts and the
// queue is cleared.
type RunawayFlushError struct {
	NodeID uint64
	Runs   int
}

func (e *RunawayFlushError) Error() string {
	return fmt.Sprintf("reactive: node %d re-ran %d times in one flush, aborting", e.NodeID, e.Runs)
}
