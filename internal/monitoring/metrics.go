package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Scan metrics
	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dtw_pattern_finder_scan_duration_seconds",
			Help:    "Wall time of a full sliding window scan",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"method"},
	)

	offsetsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtw_pattern_finder_offsets_scanned_total",
			Help: "Total number of candidate offsets evaluated",
		},
		[]string{"method"},
	)

	bestDistance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dtw_pattern_finder_best_distance",
			Help: "Warp distance of the most recent best fit",
		},
		[]string{"symbol"},
	)

	// Market data metrics
	klinesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtw_pattern_finder_klines_fetched_total",
			Help: "Total number of klines downloaded from the exchange",
		},
		[]string{"symbol", "interval"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dtw_pattern_finder_errors_total",
			Help: "Total number of failed runs by error kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(scanDuration)
	prometheus.MustRegister(offsetsScanned)
	prometheus.MustRegister(bestDistance)
	prometheus.MustRegister(klinesFetched)
	prometheus.MustRegister(errorsTotal)
}

// RecordScan records a completed scan
func RecordScan(method string, offsets int, elapsed time.Duration) {
	scanDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	offsetsScanned.WithLabelValues(method).Add(float64(offsets))
}

// UpdateBestDistance updates the best fit distance for a symbol
func UpdateBestDistance(symbol string, distance float64) {
	bestDistance.WithLabelValues(symbol).Set(distance)
}

// RecordKlines records downloaded klines
func RecordKlines(symbol, interval string, count int) {
	klinesFetched.WithLabelValues(symbol, interval).Add(float64(count))
}

// RecordError records a failed run
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile dumps every registered metric to path in the node exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
