package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the model serves inference.
	Healthy Status = "ok"
	// Degraded indicates a failing check.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	CachedItems *int
}

// Service coordinates health checks.
type Service struct {
	model ModelChecker
	cache CacheReporter
}

// New creates a Service. cache can be nil.
func New(model ModelChecker, cache CacheReporter) *Service {
	return &Service{model: model, cache: cache}
}

// Check runs a smoke inference against the model.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.model.HealthCheck(ctx); err != nil {
		checks["model"] = CheckError
	} else {
		checks["model"] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks}
	if s.cache != nil {
		n := s.cache.Len()
		report.CachedItems = &n
	}
	return report
}
