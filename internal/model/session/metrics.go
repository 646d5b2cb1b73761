package session

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramTurnTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "advisor",
		Subsystem: "session",
		Name:      "histogram_turn_time_seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	},
	[]string{"status"},
)

func observeTurn(elapsed time.Duration, err bool) {
	histogramTurnTime.
		WithLabelValues(strconv.FormatBool(err)).
		Observe(elapsed.Seconds())
}
