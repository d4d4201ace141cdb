package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitledger",
		Name:      "mutations_total",
		Help:      "Ledger mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	settlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "splitledger",
		Name:      "settlement_duration_seconds",
		Help:      "Time spent computing settlements.",
		Buckets:   prometheus.DefBuckets,
	})
)

func observeMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(operation, outcome).Inc()
}
