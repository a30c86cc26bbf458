package health

import (
	"context"
	"time"
)

// Pinger is anything that can report reachability: the pgx pool, the
// idempotency cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db    Pinger
	cache Pinger
}

type HealthStatus struct {
	Status   string           `json:"status"`
	Database ComponentHealth  `json:"database"`
	Cache    *ComponentHealth `json:"cache,omitempty"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// NewHealthChecker checks db always and cache when non-nil. A failing cache
// degrades the report but does not make the service unhealthy.
func NewHealthChecker(db Pinger, cache Pinger) *HealthChecker {
	return &HealthChecker{db: db, cache: cache}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", Database: check(ctx, h.db)}
	if status.Database.Status != "healthy" {
		status.Status = "unhealthy"
	}
	if h.cache != nil {
		cache := check(ctx, h.cache)
		status.Cache = &cache
		if cache.Status != "healthy" && status.Status == "healthy" {
			status.Status = "degraded"
		}
	}
	return status
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}
