package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/report"
	"github.com/clinic/clinic/internal/domain/settings"
	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/validate"
)

const pgSchema = "public"

// stores holds the repositories for the configured STORE_DRIVER.
type stores struct {
	driver       string
	appointments appointment.Repository
	settings     settings.Repository
	health       db.Pinger

	migrator *db.Migrator
	gormDB   *gorm.DB
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// applySchema creates the tables for the driver and returns how many schema
// units were applied.
func (s *stores) applySchema(ctx context.Context) (int, error) {
	switch {
	case s.migrator != nil:
		return s.migrator.Up(ctx, pgSchema)
	case s.gormDB != nil:
		if err := appointment.AutoMigrateGorm(s.gormDB); err != nil {
			return 0, err
		}
		if err := settings.AutoMigrateGorm(s.gormDB); err != nil {
			return 1, err
		}
		return 2, nil
	default:
		return 0, nil
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	pc := db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, pc)
		if err != nil {
			return nil, err
		}
		return &stores{
			driver:       cfg.StoreDriver,
			appointments: appointment.NewRepoPG(pool),
			settings:     settings.NewRepoPG(pool),
			health:       db.PoolHealth(pool),
			migrator:     db.NewMigrator(pool, db.SchemaFS()),
			closers:      []func(){pool.Close},
		}, nil

	case config.DriverMySQL:
		gdb, err := db.OpenMySQL(ctx, pc, logger)
		if err != nil {
			return nil, err
		}
		st := &stores{
			driver:       cfg.StoreDriver,
			appointments: appointment.NewRepoGorm(gdb),
			settings:     settings.NewRepoGorm(gdb),
			gormDB:       gdb,
		}
		st.health = st.appointments
		if sqlDB, err := gdb.DB(); err == nil {
			st.closers = append(st.closers, func() { sqlDB.Close() })
		}
		return st, nil

	case config.DriverMemory:
		repo := appointment.NewMemoryRepo()
		return &stores{
			driver:       cfg.StoreDriver,
			appointments: repo,
			settings:     settings.NewMemoryRepo(),
			health:       repo,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// newCache picks the report cache. A zero TTL disables caching; otherwise
// Redis is used when REDIS_URL is set and an in-process cache when it is not.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Cache, error) {
	if cfg.ReportCacheTTL <= 0 {
		return cache.Noop{}, nil
	}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.ReportCacheTTL)
		if err != nil {
			return nil, err
		}
		logger.Info().Dur("ttl", cfg.ReportCacheTTL).Msg("report cache: redis")
		return rc, nil
	}
	mc := cache.NewMemory(cfg.ReportCacheTTL)
	mc.StartCleanup(ctx, time.Minute)
	logger.Info().Dur("ttl", cfg.ReportCacheTTL).Msg("report cache: memory")
	return mc, nil
}

// newServer wires services, handlers and middleware onto a fresh echo instance.
func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger, st *stores, reportCache cache.Cache) (*echo.Echo, error) {
	settingsSvc := settings.NewService(st.settings)
	current, err := settingsSvc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	loc, err := time.LoadLocation(current.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", current.Timezone).Msg("unknown clinic timezone, using local time")
		loc = time.Local
	}

	apptSvc := appointment.NewService(st.appointments, appointment.WithLocation(loc))
	reportSvc := report.NewService(st.appointments,
		report.WithCache(reportCache),
		report.WithWeeklyWindow(cfg.ReportWeeklyWindowDays),
		report.WithLogger(logger),
	)
	apptSvc.OnChange(reportSvc.Invalidate)
	patientSvc := patient.NewService(st.appointments)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:  []string{"Content-Type", "X-Request-ID", "If-None-Match"},
		ExposeHeaders: []string{"ETag", "X-Request-ID", "Retry-After"},
	}))
	e.Use(middleware.SecurityHeaders(cfg.Env == "production"))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimit(rl))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/health"))
	}
	e.Use(middleware.ETag("/health"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(st.driver, st.health))

	handlers := []interface{ RegisterRoutes(*echo.Group) }{
		appointment.NewHandler(apptSvc),
		report.NewHandler(reportSvc),
		patient.NewHandler(patientSvc),
		settings.NewHandler(settingsSvc),
	}
	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		for _, h := range handlers {
			h.RegisterRoutes(g)
		}
	}

	return e, nil
}
