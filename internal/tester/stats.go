package tester

import "github.com/prometheus/client_golang/prometheus"

// Stats holds the observability counters the tester maintains per §4.B
// ("cache hits/misses/drops, backtrack points created/used, equivalence
// reductions, conflicts-with-essential"), exported as Prometheus counters on
// the engine's existing metrics endpoint.
type Stats struct {
	CacheHits              prometheus.Counter
	CacheMisses            prometheus.Counter
	CacheDrops             prometheus.Counter
	BacktrackPointsCreated prometheus.Counter
	BacktrackPointsUsed    prometheus.Counter
	EquivalenceReductions  prometheus.Counter
	ConflictsWithEssential prometheus.Counter
}

// NewStats registers the tester's counters with reg. Passing nil registers
// them with the default Prometheus registry.
func NewStats(reg prometheus.Registerer) *Stats {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto(reg)
	return &Stats{
		CacheHits:              f("tester_cache_hits_total", "Installability cache hits."),
		CacheMisses:            f("tester_cache_misses_total", "Installability cache misses."),
		CacheDrops:             f("tester_cache_drops_total", "Installability cache entries dropped on invalidation."),
		BacktrackPointsCreated: f("tester_backtrack_points_created_total", "Speculative backtrack points created by the solver."),
		BacktrackPointsUsed:    f("tester_backtrack_points_used_total", "Backtrack points actually popped and retried."),
		EquivalenceReductions:  f("tester_equivalence_reductions_total", "Disjunctions reduced via equivalence-class deduplication."),
		ConflictsWithEssential: f("tester_conflicts_with_essential_total", "Solver attempts that conflicted with the pseudo-essential set."),
	}
}

func promauto(reg prometheus.Registerer) func(name, help string) prometheus.Counter {
	return func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "archmigrate",
			Name:      name,
			Help:      help,
		})
		// Registration errors (e.g. duplicate registration across repeated
		// NewStats calls in tests) are non-fatal: an already-registered
		// counter of the same name is returned in its place, and on any other
		// error the unregistered counter is returned so callers can still
		// increment it.
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
					return existing
				}
			}
		}
		return c
	}
}
