package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/scheduler"
	"github.com/jonathan/jobboard/internal/seed"
	"github.com/jonathan/jobboard/internal/server"
	"github.com/jonathan/jobboard/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type serveOptions struct {
	configPath  string
	port        int
	seedPath    string
	databaseURL string
	redisURL    string
	sweep       string
	corsOrigins []string
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the job board over REST.

Settings come from --config (JSON), then DATABASE_URL and REDIS_URL, and
explicit flags override both. JWT_SECRET must be set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.configPath, "config", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&serveOpts.port, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveOpts.seedPath, "seed", "", "Seed fixture to load (default: built-in)")
	serveCmd.Flags().StringVar(&serveOpts.databaseURL, "db-url", "", "PostgreSQL URL for the audit log (overrides DATABASE_URL)")
	serveCmd.Flags().StringVar(&serveOpts.redisURL, "redis-url", "", "Redis URL for token revocation (overrides REDIS_URL)")
	serveCmd.Flags().StringVar(&serveOpts.sweep, "sweep", "", "Cron spec for closing expired postings, e.g. \"@every 15m\"")
	serveCmd.Flags().StringSliceVar(&serveOpts.corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig layers the config file, the environment and the flags the
// user set, then fills defaults and validates.
func resolveConfig(opts serveOptions, changed func(name string) bool) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if changed("port") {
		cfg.Port = opts.port
	}
	if changed("seed") {
		cfg.SeedPath = opts.seedPath
	}
	if changed("db-url") {
		cfg.DatabaseURL = opts.databaseURL
	}
	if changed("redis-url") {
		cfg.RedisURL = opts.redisURL
	}
	if changed("sweep") {
		cfg.SweepSchedule = opts.sweep
	}
	if changed("cors-origin") {
		cfg.CORSOrigins = opts.corsOrigins
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveOpts, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fx, err := loadFixture(cfg.SeedPath)
	if err != nil {
		return err
	}
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	users, err := session.NewDirectory(fx.Users, passwords)
	if err != nil {
		return fmt.Errorf("failed to index users: %w", err)
	}

	memory := jobboard.NewMemoryRecorder(cfg.AuditLimit)
	recorders := jobboard.MultiRecorder{jobboard.LogRecorder{}, memory}
	var audit server.AuditReader = memory

	var auditLog *db.AuditLog
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		auditLog = db.NewAuditLog(database, cfg.AuditBuffer)
		recorders = append(recorders, auditLog)
		audit = auditLog
		log.Println("[serve] audit events are persisted to PostgreSQL")
	}

	var revoker session.Revoker
	if cfg.RedisURL != "" {
		redisRevoker, err := session.NewRedisRevoker(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
		log.Println("[serve] token revocations are stored in Redis")
	}

	board := jobboard.New(fx.Snapshot, jobboard.Options{Recorder: recorders})
	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
	}, server.Deps{
		Board: board,
		Users: users,
		JWT:   server.NewJWTService(jwtConfig, revoker),
		Audit: audit,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	producers := []func(context.Context) error{srv.Start}
	if cfg.SweepSchedule != "" {
		producers = append(producers, scheduler.New(board, cfg.SweepSchedule).Run)
	}
	var writer func(context.Context) error
	if auditLog != nil {
		writer = auditLog.Run
	}
	return runServices(ctx, writer, producers...)
}

// runServices runs the event producers until ctx is done or one fails. The
// audit writer gets its own context, canceled only after every producer has
// returned, so events from requests still draining during shutdown are
// written. writer may be nil.
func runServices(ctx context.Context, writer func(context.Context) error, producers ...func(context.Context) error) error {
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()

	var g errgroup.Group
	if writer != nil {
		g.Go(func() error { return writer(writerCtx) })
	}
	g.Go(func() error {
		defer stopWriter()
		pg, pctx := errgroup.WithContext(ctx)
		for _, run := range producers {
			pg.Go(func() error { return run(pctx) })
		}
		return pg.Wait()
	})
	return g.Wait()
}
