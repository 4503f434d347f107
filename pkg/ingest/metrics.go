package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomePresent = "present"
	outcomeAbsent  = "absent"
	outcomeBlank   = "blank"
)

type metrics struct {
	lines     *prometheus.CounterVec
	fragments *prometheus.CounterVec
	joined    *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		lines: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsonfrag",
			Subsystem: "ingest",
			Name:      "lines_total",
			Help:      "Total number of lines read.",
		}, []string{"source"}),
		fragments: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsonfrag",
			Subsystem: "ingest",
			Name:      "fragments_total",
			Help:      "Total number of lines by decode outcome.",
		}, []string{"source", "outcome"}),
		joined: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsonfrag",
			Subsystem: "ingest",
			Name:      "joined_records_total",
			Help:      "Total number of objects decoded from lines joined together.",
		}, []string{"source"}),
		dropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsonfrag",
			Subsystem: "ingest",
			Name:      "dropped_fragments_total",
			Help:      "Total number of fragments dropped without output.",
		}, []string{"source", "reason"}),
	}
}
