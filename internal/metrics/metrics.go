package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GeoCacheHitsTotal counts answers per cache kind (boundary|coordinate) and tier (memory|persisted|static).
	GeoCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_geocache_hits_total",
		Help: "Geodata cache answers by kind and tier",
	}, []string{"kind", "tier"})
	GeoCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_geocache_misses_total",
		Help: "Geodata lookups that no tier could answer",
	}, []string{"kind"})
	GeoCacheEvictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_geocache_evictions_total",
		Help: "Persisted entries deleted on read (expired or undecodable)",
	}, []string{"kind"})
	StaticLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_static_loads_total",
		Help: "Per-state static geodata file loads by result",
	}, []string{"kind", "result"})
	StaticLoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rtomap_static_load_duration_ms",
		Help:    "Static geodata file load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"kind"})
	RegionClicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_region_clicks_total",
		Help: "Region clicks by renderer (svg|tile) and outcome (resolved|noop)",
	}, []string{"renderer", "outcome"})
	UnresolvedNamesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rtomap_unresolved_names_total",
		Help: "External boundary names passed through without a canonical match",
	})
	NominatimRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rtomap_nominatim_requests_total",
		Help: "Boundary service requests by result",
	}, []string{"result"})
	NominatimDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rtomap_nominatim_duration_ms",
		Help:    "Boundary service call duration in milliseconds",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
)

func init() {
	prometheus.MustRegister(GeoCacheHitsTotal)
	prometheus.MustRegister(GeoCacheMissesTotal)
	prometheus.MustRegister(GeoCacheEvictionsTotal)
	prometheus.MustRegister(StaticLoadsTotal)
	prometheus.MustRegister(StaticLoadDurationMs)
	prometheus.MustRegister(RegionClicksTotal)
	prometheus.MustRegister(UnresolvedNamesTotal)
	prometheus.MustRegister(NominatimRequestsTotal)
	prometheus.MustRegister(NominatimDurationMs)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
