package metrics

import "time"

// Recorder defines observability hooks for the wiki core. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe
// for concurrent use.
type Recorder interface {
	// IncRelatedLookup counts related-document lookups by result
	// ("hit", "miss", "error").
	IncRelatedLookup(result string)

	// IncRedirectCreated counts redirect documents generated by renames.
	IncRedirectCreated()

	// IncSearchSync counts index pushes by action ("index", "unindex").
	IncSearchSync(action string)

	// ObserveRebuildDuration records the duration of one document rebuild.
	ObserveRebuildDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRelatedLookup(string)               {}
func (NoopRecorder) IncRedirectCreated()                   {}
func (NoopRecorder) IncSearchSync(string)                  {}
func (NoopRecorder) ObserveRebuildDuration(time.Duration)  {}
