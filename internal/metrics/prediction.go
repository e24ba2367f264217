package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prediction Prometheus metrics.
var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of successful predictions by class label",
		},
		[]string{"label"},
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Model inference duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	PredictionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Rejected or failed prediction requests",
		},
		[]string{"error_type"}, // malformed_payload / schema_mismatch / prediction_failed
	)

	PredictionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Prediction cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ModelInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_info",
			Help:      "Loaded model metadata, value is always 1",
		},
		[]string{"schema", "trees", "n_features"},
	)
)

var registerOnce sync.Once

// Register registers all service metrics with the default registry. Must be called from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequestDuration)
		prometheus.MustRegister(httpRequestsTotal)
		prometheus.MustRegister(PredictionsTotal)
		prometheus.MustRegister(PredictionDuration)
		prometheus.MustRegister(PredictionErrorsTotal)
		prometheus.MustRegister(PredictionCacheTotal)
		prometheus.MustRegister(ModelInfo)
	})
}

// SetModelInfo publishes the loaded model's shape.
func SetModelInfo(schema string, trees, nFeatures int) {
	ModelInfo.Reset()
	ModelInfo.WithLabelValues(schema, strconv.Itoa(trees), strconv.Itoa(nFeatures)).Set(1)
}
