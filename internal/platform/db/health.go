package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by every store backend that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsProvider is optionally implemented by backends that expose pool statistics.
type StatsProvider interface {
	Stats() *PoolStats
}

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"totalConns"`
	IdleConns       int32  `json:"idleConns"`
	AcquiredConns   int32  `json:"acquiredConns"`
	MaxConns        int32  `json:"maxConns"`
	AcquireCount    int64  `json:"acquireCount"`
	AcquireDuration string `json:"acquireDuration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

type poolHealth struct{ pool *pgxpool.Pool }

func (p poolHealth) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
func (p poolHealth) Stats() *PoolStats              { return GetPoolStats(p.pool) }

// PoolHealth reports reachability and statistics for a pgx pool.
func PoolHealth(pool *pgxpool.Pool) Pinger { return poolHealth{pool: pool} }

// HealthHandler returns a handler for the store health check endpoint.
func HealthHandler(driver string, p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		body := map[string]interface{}{"driver": driver}
		if sp, ok := p.(StatsProvider); ok {
			body["pool"] = sp.Stats()
		}

		if err := p.Ping(ctx); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}

		body["status"] = "healthy"
		return c.JSON(http.StatusOK, body)
	}
}
