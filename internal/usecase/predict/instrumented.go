package predict

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
	"github.com/kailas-cloud/mqttguard/internal/logger"
	"github.com/kailas-cloud/mqttguard/internal/metrics"
)

// InstrumentedPredictor wraps a Predictor with metrics and logging.
// Feature values are never logged.
type InstrumentedPredictor struct {
	inner  Predictor
	logger *zap.Logger
}

// NewInstrumentedPredictor wraps inner with observability.
func NewInstrumentedPredictor(inner Predictor, logger *zap.Logger) *InstrumentedPredictor {
	return &InstrumentedPredictor{inner: inner, logger: logger}
}

// Predict delegates to the inner predictor and records duration, label and failures.
func (p *InstrumentedPredictor) Predict(ctx context.Context, v feature.Vector) (int, error) {
	log := p.requestLogger(ctx)
	start := time.Now()

	label, err := p.inner.Predict(ctx, v)

	duration := time.Since(start)
	metrics.PredictionDuration.Observe(duration.Seconds())

	if err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("prediction_failed").Inc()
		log.Error("Prediction failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return 0, fmt.Errorf("instrumented predict: %w", err)
	}

	metrics.PredictionsTotal.WithLabelValues(strconv.Itoa(label)).Inc()
	log.Debug("Prediction completed",
		zap.Int("label", label),
		zap.Duration("duration", duration),
	)
	return label, nil
}

// requestLogger prefers the per-request logger carrying the request id.
func (p *InstrumentedPredictor) requestLogger(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return p.logger
}
