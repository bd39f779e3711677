package reactive

type CacheState uint8

const (
	CacheClean CacheState = iota // value is valid, no need to recompute
	CacheCheck                   // value might be stale, check sources to decide whether to recompute
	CacheDirty                   // value is invalid, a source changed, must recompute
)

// SignalAware is implemented by every node in the graph so error callbacks
// can report which node misbehaved.
type SignalAware interface {
	isSignalAware()
}

// dependency is anything a computation can read: a writeable signal or a
// computed. Subscribers own the edge; a dependency only keeps
// back-references so it can mark subscribers stale.
type dependency interface {
	subscribe(sub subscriber)
	unsubscribe(sub subscriber)
	// updateIfNecessary brings the dependency up to date during a pull.
	// For writeable signals this is a no-op.
	updateIfNecessary()
}

// subscriber is a node that reads dependencies: a computed or an effect.
type subscriber interface {
	// stale is the mark phase: direct subscribers of a changed cell are
	// painted CacheDirty, their transitive subscribers CacheCheck.
	stale(st CacheState)
	// setState upgrades the state without propagating further, used when a
	// source computed actually changed value during a pull.
	setState(st CacheState)
	updateIfNecessary()
}

// observer is a subscriber while it is the actively tracked computation.
type observer interface {
	subscriber
	// recordSource adds dep to the fresh dependency set for this run,
	// reporting whether it was newly added.
	recordSource(dep dependency) bool
}
