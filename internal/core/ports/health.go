package ports

import "context"

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	// Ping returns nil when the dependency answers.
	Ping(ctx context.Context) error
	// Name is the key used in the health report ("postgresql", "redis").
	Name() string
}
