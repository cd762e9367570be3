package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_saves_total",
		Help: "Snapshot file writes attempted, per table.",
	}, []string{"table"})

	saveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_save_failures_total",
		Help: "Snapshot serializations or writes that failed, per table.",
	}, []string{"table"})
)
