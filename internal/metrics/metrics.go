package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turbolytics/kevetl/internal/catalog"
)

// Run holds the gauges describing the most recent run. A private registry is
// used so the textfile only contains these series.
type Run struct {
	Registry *prometheus.Registry

	LastRunTimestamp prometheus.Gauge
	LastRunSuccess   prometheus.Gauge
	LastRunDuration  prometheus.Gauge
	Records          *prometheus.GaugeVec
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		Registry: reg,
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kevetl_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kevetl_last_run_success",
			Help: "1 if the last run extracted and loaded without error",
		}),
		LastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "kevetl_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		Records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kevetl_last_run_records",
				Help: "Record counts of the last run by stage",
			},
			[]string{"stage"},
		),
	}
}

// Observe copies a finished run catalog into the gauges.
func (r *Run) Observe(c *catalog.Catalog) {
	r.LastRunTimestamp.Set(float64(c.EndTime.Unix()))
	if c.Success() {
		r.LastRunSuccess.Set(1)
	} else {
		r.LastRunSuccess.Set(0)
	}
	r.LastRunDuration.Set(c.Duration().Seconds())

	r.Records.WithLabelValues("extracted").Set(float64(c.NumSourceRecords))
	r.Records.WithLabelValues("transformed").Set(float64(c.NumRecordsProcessed))
	r.Records.WithLabelValues("date_failures").Set(float64(c.NumDateFailures))
	r.Records.WithLabelValues("loaded").Set(float64(c.NumRecordsLoaded))
}

// WriteTextfile writes the gauges in the node-exporter textfile format.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
