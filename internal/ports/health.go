package ports

import "context"

// HealthChecker is a dependency whose state decides readiness, such as the
// session store or a remote dispatch endpoint.
type HealthChecker interface {
	// Name identifies the check in readiness output, e.g. "session-store".
	Name() string

	// HealthCheck returns nil when the dependency is usable. It must give up
	// when ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry runs the readiness checks.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll runs every check and returns the outcome by name. A nil
	// value means healthy.
	CheckAll(ctx context.Context) map[string]error
}
