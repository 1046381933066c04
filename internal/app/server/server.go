package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"hrpayroll/internal/domain/attendance"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/auth"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/domain/notifications"
	"hrpayroll/internal/domain/payroll"
	"hrpayroll/internal/domain/reports"
	"hrpayroll/internal/platform/blob"
	"hrpayroll/internal/platform/config"
	"hrpayroll/internal/platform/crypto"
	"hrpayroll/internal/platform/db"
	"hrpayroll/internal/platform/email"
	"hrpayroll/internal/platform/jobs"
	"hrpayroll/internal/platform/metrics"
	"hrpayroll/internal/platform/store"
)

const (
	notifyQueueSize  = 256
	notifyJobTimeout = 30 * time.Second
)

// App holds the wired services behind the HTTP router.
type App struct {
	Config   config.Config
	Store    store.Store
	Metrics  *metrics.Collector
	Jobs     *jobs.Service
	Services Services
	Router   http.Handler
}

// New wires services over st. documents receives rendered payslips and mailer
// delivers leave notifications. With DATA_ENCRYPTION_KEY set, stored payslips
// and MFA secrets are sealed with it.
func New(cfg config.Config, st store.Store, documents blob.Storage, mailer notifications.Mailer) (*App, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	if sealer.Configured() {
		documents = blob.Encrypted{Storage: documents, Cipher: sealer}
	}

	collector := metrics.New()
	queue := jobs.New(cfg.NotifyWorkers, notifyQueueSize, notifyJobTimeout)

	notifier := notifications.New(st, mailer, cfg.EmailFrom)
	notifier.Jobs = queue

	auditSvc := audit.New(st)
	leaveSvc := leave.NewService(st, auditSvc, notifier)
	authSvc := auth.NewService(st, auditSvc, cfg.JWTSecret, cfg.SessionTTL)
	if sealer.Configured() {
		authSvc.Secrets = sealer
	}
	services := Services{
		Auth:       authSvc,
		Core:       core.NewService(st, auditSvc, leaveSvc),
		Attendance: attendance.NewService(st, auditSvc),
		Leave:      leaveSvc,
		Payroll:    payroll.NewService(st, auditSvc, documents, collector),
		Audit:      auditSvc,
		Reports:    reports.NewService(st),
	}

	return &App{
		Config:   cfg,
		Store:    st,
		Metrics:  collector,
		Jobs:     queue,
		Services: services,
		Router:   NewRouter(cfg, st, services, collector),
	}, nil
}

// Run loads configuration, connects storage and serves until ctx is done.
func Run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	documents, err := openDocuments(ctx, cfg)
	if err != nil {
		return err
	}

	app, err := New(cfg, st, documents, email.New(cfg))
	if err != nil {
		return err
	}
	if err := app.seed(ctx); err != nil {
		return err
	}

	jobsCtx, stopJobs := context.WithCancel(context.WithoutCancel(ctx))
	app.Jobs.Start(jobsCtx)
	defer func() {
		app.Jobs.Drain()
		stopJobs()
		app.Jobs.Wait()
	}()

	return Start(ctx, cfg, app.Router, logger)
}

// Start runs the HTTP server with graceful shutdown.
func Start(ctx context.Context, cfg config.Config, router http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
	}
	return store.NewPostgres(pool), pool.Close, nil
}

func openDocuments(ctx context.Context, cfg config.Config) (blob.Storage, error) {
	if cfg.PayslipStorage == config.PayslipStorageMinIO {
		m, err := blob.NewMinIO(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		return m, nil
	}
	l, err := blob.NewLocal(cfg.PayslipDir)
	if err != nil {
		return nil, fmt.Errorf("payslip dir: %w", err)
	}
	return l, nil
}

func (a *App) seed(ctx context.Context) error {
	if a.Config.SeedDemoData {
		if err := seedDemo(ctx, a.Store, time.Now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		if a.Config.SeedUserPassword != "" {
			if err := seedEmployeeUsers(ctx, a.Store, a.Services.Auth, a.Config.SeedUserPassword); err != nil {
				return fmt.Errorf("seed employee users: %w", err)
			}
		}
	}
	if a.Config.SeedAdminPassword == "" {
		return nil
	}
	created, err := a.Services.Auth.EnsureAdmin(ctx, a.Config.SeedAdminEmail, a.Config.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		slog.Info("seeded admin user", "email", a.Config.SeedAdminEmail)
	}
	return nil
}
