package health

import (
	"context"
	"time"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/monitoring"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db        Pinger
	redis     func(ctx context.Context) string
	host      func() monitoring.HostStats
	startedAt time.Time
}

type HealthStatus struct {
	Status   string                `json:"status"`
	Database DatabaseHealth        `json:"database"`
	Redis    string                `json:"redis,omitempty"`
	Host     *monitoring.HostStats `json:"host,omitempty"`
	Uptime   string                `json:"uptime,omitempty"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(db Pinger) *HealthChecker {
	return &HealthChecker{
		db:        db,
		redis:     redisStatus,
		host:      func() monitoring.HostStats { return monitoring.CollectHost(200 * time.Millisecond) },
		startedAt: time.Now(),
	}
}

// CheckBasic pings the database only.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := h.checkDatabase(ctx)

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
}

// CheckDetailed adds redis and host resource usage. Redis is optional: a
// disabled cache keeps the service healthy, an unreachable one degrades it.
func (h *HealthChecker) CheckDetailed(ctx context.Context) HealthStatus {
	status := h.CheckBasic(ctx)
	status.Redis = h.redis(ctx)
	if status.Status == "healthy" && status.Redis == "unhealthy" {
		status.Status = "degraded"
	}
	host := h.host()
	status.Host = &host
	status.Uptime = time.Since(h.startedAt).Round(time.Second).String()
	return status
}

func (h *HealthChecker) checkDatabase(ctx context.Context) DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func redisStatus(context.Context) string {
	if cache.GetClient() == nil {
		return "disabled"
	}
	if cache.IsHealthy() {
		return "healthy"
	}
	return "unhealthy"
}
