package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_reports_total",
		Help: "Total number of reports submitted",
	})
	DetectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_detections_total",
		Help: "Total number of billboard detections persisted",
	})
	ViolationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_violations_total",
		Help: "Total number of violations recorded, by kind",
	}, []string{"kind"})
	SubmissionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_submission_failures_total",
		Help: "Total number of report submissions rolled back",
	})
)

func init() {
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(DetectionsTotal)
	prometheus.MustRegister(ViolationsTotal)
	prometheus.MustRegister(SubmissionFailuresTotal)
}

// Handler exposes the registered metrics for scraping; mounted at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
