package predict

import (
	"context"

	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
)

// Predictor maps an encoded feature vector to a class label.
// Implementations must be safe for concurrent use and must not mutate shared state.
type Predictor interface {
	Predict(ctx context.Context, v feature.Vector) (int, error)
}
