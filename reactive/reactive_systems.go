package reactive

// OnErrorFunc receives errors returned by effect functions during a run.
type OnErrorFunc func(from SignalAware, err error)

// maxFlushRuns bounds how often a single effect may re-run within one
// flush before the drain gives up with a RunawayFlushError.
const maxFlushRuns = 10_000

// ReactiveSystem owns one independent signal graph: the execution tracker,
// the batch controller and the pending-effect queue. A system is
// single-threaded cooperative; sharing one across goroutines without
// external locking is unsupported. Create one system per logical thread
// (or per test case) instead.
type ReactiveSystem struct {
	nextID uint64

	batchDepth int
	flushing   bool
	flushEpoch uint64

	activeSub    observer
	activeScope  *Scope
	pauseStack   []observer
	computeDepth int

	queuedEffects []*EffectRunner

	onError OnErrorFunc
}

func CreateReactiveSystem(onError OnErrorFunc) *ReactiveSystem {
	return &ReactiveSystem{onError: onError}
}

func (rs *ReactiveSystem) newID() uint64 {
	rs.nextID++
	return rs.nextID
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

func (rs *ReactiveSystem) EndBatch() {
	rs.batchDepth--
	rs.maybeFlush()
}

// Batch coalesces every write inside fn into a single propagation flush
// once the outermost batch closes. Nested batches flatten into the
// outermost one.
func Batch[T any](rs *ReactiveSystem, fn func() T) T {
	rs.StartBatch()
	defer rs.EndBatch()
	return fn()
}

// PauseTracking makes subsequent reads untracked until ResumeTracking.
// Calls nest like a stack.
func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.activeSub)
	rs.activeSub = nil
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.pauseStack) - 1
	rs.activeSub = rs.pauseStack[lastIdx]
	rs.pauseStack = rs.pauseStack[:lastIdx]
}

// Untrack runs fn with dependency tracking paused, so reads inside fn do
// not register edges on the currently running computation.
func Untrack[T any](rs *ReactiveSystem, fn func() T) T {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	return fn()
}

func (rs *ReactiveSystem) enqueueEffect(e *EffectRunner) {
	if e.queued {
		return
	}
	e.queued = true
	rs.queuedEffects = append(rs.queuedEffects, e)
}

// maybeFlush drains the pending queue unless a batch is open, a flush is
// already draining, or a computation is mid-run. Each caller that can be
// the outermost frame (signal write, computed update, effect run, batch
// end) invokes it on the way out, so the flush always happens at the first
// moment the graph is quiescent.
func (rs *ReactiveSystem) maybeFlush() {
	if rs.batchDepth == 0 && !rs.flushing && rs.computeDepth == 0 {
		rs.flush()
	}
}

// flush drains the queue as an iterative worklist: running an effect may
// enqueue further dirty effects, which the same pass picks up. Recursion
// is deliberately avoided so deep transitive chains cannot overflow the
// stack and the runaway bound stays trivial to enforce.
func (rs *ReactiveSystem) flush() {
	rs.flushing = true
	rs.flushEpoch++
	defer func() {
		for _, e := range rs.queuedEffects {
			e.queued = false
		}
		rs.queuedEffects = rs.queuedEffects[:0]
		rs.flushing = false
	}()

	for i := 0; i < len(rs.queuedEffects); i++ {
		e := rs.queuedEffects[i]
		e.queued = false
		if e.stopped {
			continue
		}
		if e.flushMark != rs.flushEpoch {
			e.flushMark = rs.flushEpoch
			e.flushRuns = 0
		}
		e.flushRuns++
		if e.flushRuns > maxFlushRuns {
			panic(&RunawayFlushError{NodeID: e.id, Runs: e.flushRuns})
		}
		e.updateIfNecessary()
	}
}
