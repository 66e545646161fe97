package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/appointment"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create or update the appointment and settings tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := openStores(ctx, cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			defer st.close()

			fmt.Printf("Applying schema for driver: %s\n", st.driver)
			count, err := st.applySchema(ctx)
			if err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Printf("Applied %d schema file(s)\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which schema files have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := openStores(ctx, cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			defer st.close()

			if st.migrator == nil {
				fmt.Printf("Driver %s manages its schema on apply; no versioned files to report\n", st.driver)
				return nil
			}
			statuses, err := st.migrator.Status(ctx, pgSchema)
			if err != nil {
				return fmt.Errorf("failed to get schema status: %w", err)
			}

			fmt.Printf("Schema status for: %s\n", pgSchema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo appointments if they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverMemory {
				return errors.New("seed needs a persistent store; set SEED_DEMO_DATA=true to seed the memory store on serve")
			}
			ctx := context.Background()
			st, err := openStores(ctx, cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			defer st.close()

			n, err := appointment.Seed(ctx, st.appointments)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Printf("Inserted %d demo appointment(s)\n", n)
			return nil
		},
	}
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = newLogger(cfg.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.close()
	logger.Info().Str("driver", st.driver).Msg("connected to store")

	if cfg.SeedDemoData {
		n, err := appointment.Seed(ctx, st.appointments)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
		logger.Info().Int("inserted", n).Msg("demo appointments seeded")
	}

	reportCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up report cache")
	}

	e, err := newServer(ctx, cfg, logger, st, reportCache)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
