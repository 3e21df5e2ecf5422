// Package metrics extends the teacher's bare "-listen host:port, serve
// pprof" HTTP endpoint with a /metrics handler exposing the Installability
// Tester's prometheus counters (§4.B) alongside net/http/pprof's registered
// handlers, on the one shared listener.
package metrics

import (
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on http.DefaultServeMux, as distri's own -listen flag does

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps a prometheus.Registerer so callers (internal/tester's
// NewStats, in particular) can register their counters without importing
// prometheus/client_golang/prometheus/promauto directly at the call site.
type Registry struct {
	reg *prometheus.Registry
}

// New returns a fresh registry pre-seeded with the default process/Go
// runtime collectors, matching what promauto.With(prometheus.NewRegistry())
// callers normally expect to see on their /metrics endpoint.
func New() *Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return &Registry{reg: r}
}

// Registerer exposes the underlying prometheus.Registerer for
// tester.NewStats and any other component's promauto counters.
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve registers /metrics on http.DefaultServeMux (the same mux
// net/http/pprof registers its handlers on) so a single "-listen" flag, as
// in the teacher's cmd/distri, serves both.
func (r *Registry) Serve() {
	http.Handle("/metrics", r.Handler())
}
