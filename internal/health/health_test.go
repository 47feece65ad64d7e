package health

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/monitoring"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newChecker(db Pinger) *HealthChecker {
	h := NewHealthChecker(db)
	h.host = func() monitoring.HostStats { return monitoring.HostStats{CPUPercent: 12.5} }
	return h
}

func TestCheckBasic(t *testing.T) {
	assert.Equal(t, "healthy", newChecker(pinger{}).CheckBasic(context.Background()).Status)

	status := newChecker(pinger{err: errors.New("connection refused")}).CheckBasic(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "unhealthy", status.Database.Status)
}

func TestCheckDetailed(t *testing.T) {
	cache.SetClient(nil)
	status := newChecker(pinger{}).CheckDetailed(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "disabled", status.Redis)
	if assert.NotNil(t, status.Host) {
		assert.Equal(t, 12.5, status.Host.CPUPercent)
	}

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	assert.Equal(t, "healthy", newChecker(pinger{}).CheckDetailed(context.Background()).Redis)

	mr.Close()
	status = newChecker(pinger{}).CheckDetailed(context.Background())
	assert.Equal(t, "unhealthy", status.Redis)
	assert.Equal(t, "degraded", status.Status)
}
