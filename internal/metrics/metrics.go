// Package metrics exposes prometheus instrumentation for the chunk
// streaming pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxelcore"

// Streaming holds the collectors updated by the chunk streamer each frame.
type Streaming struct {
	Loaded  prometheus.Gauge
	Pending prometheus.Gauge
	Queued  prometheus.Gauge
	Budget  prometheus.Gauge

	Evictions prometheus.Counter
	Failures  prometheus.Counter
	Generated prometheus.Counter
}

// NewStreaming registers the streaming collectors on reg, labelled with the
// world id so multiple worlds in one process stay distinguishable.
func NewStreaming(reg prometheus.Registerer, worldID string) *Streaming {
	labels := prometheus.Labels{"world": worldID}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "stream",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "stream",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	s := &Streaming{
		Loaded:    gauge("chunks_loaded", "Chunks currently resident in the graph."),
		Pending:   gauge("loads_pending", "Chunk loads queued or in flight."),
		Queued:    gauge("candidates_queued", "Scored load candidates awaiting dispatch."),
		Budget:    gauge("frame_budget", "Chunk loads allowed in the current frame."),
		Evictions: counter("evictions_total", "Chunks evicted for leaving the unload radius."),
		Failures:  counter("load_failures_total", "Chunk loads that panicked."),
		Generated: counter("chunks_generated_total", "Chunks generated by the worker pool."),
	}

	reg.MustRegister(
		s.Loaded, s.Pending, s.Queued, s.Budget,
		s.Evictions, s.Failures, s.Generated,
	)
	return s
}

// Handler returns an http handler serving the given registry in the
// prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
