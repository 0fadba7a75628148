package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	relatedLookups   *prom.CounterVec
	redirectsCreated prom.Counter
	searchSyncs      *prom.CounterVec
	rebuildDuration  prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.relatedLookups = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wiki",
			Name:      "related_lookups_total",
			Help:      "Related-document lookups by result",
		}, []string{"result"})
		pr.redirectsCreated = prom.NewCounter(prom.CounterOpts{
			Namespace: "wiki",
			Name:      "redirects_created_total",
			Help:      "Redirect documents generated by renames",
		})
		pr.searchSyncs = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wiki",
			Name:      "search_syncs_total",
			Help:      "Search index pushes by action",
		}, []string{"action"})
		pr.rebuildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "wiki",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of single-document rebuilds",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.relatedLookups, pr.redirectsCreated, pr.searchSyncs, pr.rebuildDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncRelatedLookup(result string) {
	if p == nil || p.relatedLookups == nil {
		return
	}
	p.relatedLookups.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncRedirectCreated() {
	if p == nil || p.redirectsCreated == nil {
		return
	}
	p.redirectsCreated.Inc()
}

func (p *PrometheusRecorder) IncSearchSync(action string) {
	if p == nil || p.searchSyncs == nil {
		return
	}
	p.searchSyncs.WithLabelValues(action).Inc()
}

func (p *PrometheusRecorder) ObserveRebuildDuration(d time.Duration) {
	if p == nil || p.rebuildDuration == nil {
		return
	}
	p.rebuildDuration.Observe(d.Seconds())
}
