package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricJobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qiskitd",
		Name:      "jobs_submitted_total",
		Help:      "Number of pulse jobs accepted by the daemon.",
	})
	metricJobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qiskitd",
		Name:      "jobs_completed_total",
		Help:      "Number of pulse jobs that finished successfully.",
	})
	metricJobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qiskitd",
		Name:      "jobs_failed_total",
		Help:      "Number of pulse jobs that ended in an error.",
	})
	metricJobsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qiskitd",
		Name:      "jobs_cancelled_total",
		Help:      "Number of pulse jobs cancelled before completion.",
	})
	metricJobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "qiskitd",
		Name:      "jobs_running",
		Help:      "Number of pulse jobs currently executing.",
	})
	metricJobShots = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qiskitd",
		Name:      "job_shots",
		Help:      "Shots requested per job.",
		Buckets:   prometheus.ExponentialBuckets(256, 2, 7),
	})
)

func recordJobSubmitted(shots int) {
	metricJobsSubmitted.Inc()
	metricJobShots.Observe(float64(shots))
}

func recordJobStarted() {
	metricJobsRunning.Inc()
}

func recordJobSettled(err error, cancelled bool) {
	metricJobsRunning.Dec()
	switch {
	case cancelled:
		metricJobsCancelled.Inc()
	case err != nil:
		metricJobsFailed.Inc()
	default:
		metricJobsCompleted.Inc()
	}
}
