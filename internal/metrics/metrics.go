// Package metrics holds per-run counters, written as a Prometheus textfile
// when the run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Recorder struct {
	registry *prometheus.Registry

	ListingsProcessed prometheus.Counter
	ListingsSkipped   prometheus.Counter
	ListingsFailed    prometheus.Counter
	PagesCompleted    prometheus.Counter
	FieldsMissing     *prometheus.CounterVec
	RunDuration       prometheus.Gauge
	LastRunTimestamp  prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ListingsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ictjob_listings_processed_total",
			Help: "Listings extracted and written during the run.",
		}),
		ListingsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ictjob_listings_skipped_total",
			Help: "Listings skipped because they were already in the resume file.",
		}),
		ListingsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ictjob_listings_failed_total",
			Help: "Listings abandoned after an error.",
		}),
		PagesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ictjob_pages_completed_total",
			Help: "Result pages fully walked.",
		}),
		FieldsMissing: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ictjob_fields_missing_total",
				Help: "Fields that resolved to no value, by field name.",
			},
			[]string{"field"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ictjob_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ictjob_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(
		r.ListingsProcessed,
		r.ListingsSkipped,
		r.ListingsFailed,
		r.PagesCompleted,
		r.FieldsMissing,
		r.RunDuration,
		r.LastRunTimestamp,
	)
	return r
}

// Finish stamps duration and completion time.
func (r *Recorder) Finish(duration time.Duration, now time.Time) {
	r.RunDuration.Set(duration.Seconds())
	r.LastRunTimestamp.Set(float64(now.Unix()))
}

// WriteTextfile writes every metric in node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
