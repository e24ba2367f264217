package health

import "context"

// ModelChecker checks that the loaded model can serve inference.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}

// CacheReporter exposes the prediction cache size. Optional.
type CacheReporter interface {
	Len() int
}
