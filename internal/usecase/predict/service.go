package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/mqttguard/internal/domain"
	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
	"github.com/kailas-cloud/mqttguard/internal/metrics"
)

// Result is the outcome of a single prediction.
type Result struct {
	Label int
}

// Service turns a raw request body into a prediction.
type Service struct {
	model   Predictor
	timeout time.Duration
}

// New creates a Service around a loaded model.
func New(model Predictor) *Service {
	return &Service{model: model}
}

// WithTimeout bounds each model invocation. Zero disables the bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Predict decodes body, encodes it in canonical order and runs the model.
// The model is never invoked for a body that fails decoding or encoding.
func (s *Service) Predict(ctx context.Context, body []byte) (Result, error) {
	rec, err := feature.Decode(body)
	if err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("malformed_payload").Inc()
		return Result{}, fmt.Errorf("decode record: %w", err)
	}

	return s.PredictRecord(ctx, rec)
}

// PredictRecord runs the pipeline for an already decoded record.
func (s *Service) PredictRecord(ctx context.Context, rec feature.Record) (Result, error) {
	vec, err := feature.Encode(rec)
	if err != nil {
		metrics.PredictionErrorsTotal.WithLabelValues("schema_mismatch").Inc()
		return Result{}, fmt.Errorf("encode record: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	label, err := s.model.Predict(ctx, vec)
	if err != nil {
		if !errors.Is(err, domain.ErrPredictionFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrPredictionFailed, err)
		}
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	return Result{Label: label}, nil
}
