package reactive

// CleanupFunc undoes whatever its effect run set up. It runs before the
// next re-run and once more when the effect stops.
type CleanupFunc func()

// EffectFunc is one effect run. Returning a non nil CleanupFunc registers
// it for the next re-run or stop. A returned error goes to the system's
// OnErrorFunc and leaves the effect dirty, so the next source change
// retries it.
type EffectFunc func() (CleanupFunc, error)

// EffectRunner is the eager leaf subscriber of the graph. It runs once at
// creation, tracks what it read and re-runs whenever a tracked source
// changes, deduplicated through the pending queue.
type EffectRunner struct {
	rs *ReactiveSystem
	id uint64
	fn EffectFunc

	state   CacheState
	queued  bool
	stopped bool

	flushMark uint64
	flushRuns int

	sources []dependency
	cleanup CleanupFunc
	scope   *Scope
}

var _ SignalAware = (*EffectRunner)(nil)
var _ observer = (*EffectRunner)(nil)

// Effect creates and immediately runs an effect, returning its stop
// function. Stop is idempotent and runs the pending cleanup.
func Effect(rs *ReactiveSystem, fn EffectFunc) func() {
	e := &EffectRunner{
		rs:    rs,
		id:    rs.newID(),
		fn:    fn,
		state: CacheDirty,
		scope: rs.activeScope,
	}
	if e.scope != nil {
		e.scope.own(e.Stop)
	}
	e.run()
	rs.maybeFlush()
	return e.Stop
}

func (e *EffectRunner) isSignalAware() {}

func (e *EffectRunner) updateIfNecessary() {
	if e.stopped {
		return
	}
	if e.state == CacheCheck {
		for _, src := range e.sources {
			src.updateIfNecessary()
			if e.state == CacheDirty {
				break
			}
		}
		if e.state == CacheCheck {
			e.state = CacheClean
		}
	}
	// run() drops the state to clean itself, so a write inside the body
	// that re-marks this effect survives the run.
	if e.state == CacheDirty {
		e.run()
	}
}

// run performs one effect execution: prior cleanup first, then the body
// under fresh dependency tracking. The state drops to clean before the
// body runs, so a write inside the body re-marks and re-queues the effect
// instead of being swallowed.
func (e *EffectRunner) run() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = e.sources[:0]

	rs := e.rs
	prevSub := rs.activeSub
	prevScope := rs.activeScope
	rs.activeSub = e
	rs.activeScope = e.scope
	rs.computeDepth++
	completed := false
	defer func() {
		rs.computeDepth--
		rs.activeSub = prevSub
		rs.activeScope = prevScope
		// never drain the queue while a body panic is unwinding; the
		// parked effects run at the next quiescent point
		if completed {
			rs.maybeFlush()
		}
	}()

	e.state = CacheClean
	cleanup, err := e.fn()
	completed = true
	if err != nil {
		e.state = CacheDirty
		if rs.onError != nil {
			rs.onError(e, err)
		}
		return
	}
	e.cleanup = cleanup
}

// stale marks the effect for re-run and queues it. A stopped effect
// ignores late notifications instead of failing, since an in-flight
// invalidation may still reach it after Stop.
func (e *EffectRunner) stale(st CacheState) {
	if e.stopped {
		return
	}
	if st > e.state {
		e.state = st
	}
	e.rs.enqueueEffect(e)
}

func (e *EffectRunner) setState(st CacheState) {
	if e.stopped {
		return
	}
	if st > e.state {
		e.state = st
	}
}

func (e *EffectRunner) recordSource(dep dependency) bool {
	for _, existing := range e.sources {
		if existing == dep {
			return false
		}
	}
	e.sources = append(e.sources, dep)
	return true
}

// Stop detaches the effect from all sources and runs its pending cleanup.
// Further calls are no-ops.
func (e *EffectRunner) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = nil
}
