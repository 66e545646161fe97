package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenMySQL opens a GORM handle on a MySQL DSN
// (user:pass@tcp(host:3306)/clinic?parseTime=true) and pings it.
func OpenMySQL(ctx context.Context, pc PoolConfig, logger zerolog.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(pc.URL), &gorm.Config{
		Logger: NewGormLogger(logger, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	if pc.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(int(pc.MaxConns))
	}
	if pc.MinConns > 0 {
		sqlDB.SetMaxIdleConns(int(pc.MinConns))
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return gdb, nil
}

// GormLogger routes GORM's logging through zerolog. Queries slower than the
// threshold are logged at warn; everything else traced at debug.
type GormLogger struct {
	logger        zerolog.Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

func NewGormLogger(logger zerolog.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		logger:        logger.With().Str("component", "gorm").Logger(),
		slowThreshold: slowThreshold,
		level:         gormlogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info().Msgf(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn().Msgf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error().Msgf(msg, args...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.logger.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
