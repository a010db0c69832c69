package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service answers but a dependency is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the index store is unreachable.
	Unhealthy Status = "error"
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
	Status    Status
	Checks    map[string]CheckResult
	Documents int
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	embedding  EmbeddingChecker
	index      IndexCounter
	collection string
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker) *Service {
	return &Service{db: db, embedding: embedding}
}

// WithIndex adds a document count of collection to the report.
func (s *Service) WithIndex(idx IndexCounter, collection string) *Service {
	s.index = idx
	s.collection = collection
	return s
}

// Check runs health checks against all components. A database failure makes the
// service unhealthy; any other failure degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Status: Healthy, Checks: checks}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		report.Status = Unhealthy
		return report
	}
	checks["database"] = CheckOK

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			report.Status = Degraded
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.index != nil {
		n, err := s.index.Count(ctx, s.collection)
		if err != nil {
			checks["index"] = CheckError
			report.Status = Degraded
		} else {
			checks["index"] = CheckOK
			report.Documents = n
		}
	}

	return report
}
