package integration

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/domain/settings"
	"github.com/clinic/clinic/internal/platform/db"
)

// postgresURL returns the database the Postgres suite runs against:
// TEST_DATABASE_URL, or DATABASE_URL when it names a Postgres server.
func postgresURL() string {
	if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
		return u
	}
	u := os.Getenv("DATABASE_URL")
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return u
	}
	return ""
}

// postgresSchema applies the bundled schema into a fresh schema and returns
// a pool whose connections resolve unqualified tables there. The schema is
// dropped when the test ends.
func postgresSchema(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := postgresURL()
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := db.NewPool(ctx, db.PoolConfig{URL: url, MaxConns: 2})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	schema := "it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if _, err := db.NewMigrator(admin, db.SchemaFS()).Up(ctx, schema); err != nil {
		admin.Close()
		t.Fatalf("apply schema %s: %v", schema, err)
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg.MaxConns = 4
	cfg.ConnConfig.RuntimeParams["search_path"] = schema + ",public"
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect to schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("warning: failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})
	return pool
}

// mysqlDB opens TEST_MYSQL_DSN, migrates both tables and empties them. The
// tables are emptied again when the test ends.
func mysqlDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set; skipping MySQL integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.OpenMySQL(ctx, db.PoolConfig{URL: dsn, MaxConns: 4}, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := appointment.AutoMigrateGorm(gdb); err != nil {
		t.Fatalf("migrate appointments: %v", err)
	}
	if err := settings.AutoMigrateGorm(gdb); err != nil {
		t.Fatalf("migrate settings: %v", err)
	}

	truncate := func() {
		for _, table := range []string{"appointments", "app_settings"} {
			if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
				t.Logf("warning: failed to empty %s: %v", table, err)
			}
		}
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}
