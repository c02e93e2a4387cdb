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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/printdesk/internal/config"
	"github.com/Simplici0/printdesk/internal/db"
	"github.com/Simplici0/printdesk/internal/events"
	"github.com/Simplici0/printdesk/internal/logging"
	"github.com/Simplici0/printdesk/internal/migrations"
	"github.com/Simplici0/printdesk/internal/quotes"
	"github.com/Simplici0/printdesk/internal/seed"
	"github.com/Simplici0/printdesk/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	store  *store.Store
	quotes *quotes.Service
	auth   *authService
	log    *zap.Logger
	now    func() time.Time
}

func newServer(st *store.Store, svc *quotes.Service, auth *authService, log *zap.Logger) *server {
	return &server{
		store:  st,
		quotes: svc,
		auth:   auth,
		log:    log,
		now:    time.Now,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	log.Info("seed complete", zap.Int("inserts", stats.Inserts))

	publisher, err := events.Connect(cfg.AMQPURL, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, events will only be logged", zap.Error(err))
		publisher = events.NewLogPublisher(log)
	}
	defer publisher.Close()

	st := store.New(database)
	svc := quotes.NewService(st, publisher, log, quotes.WithStrictFilaments(cfg.StrictFilaments))
	srv := newServer(st, svc, newAuthService(st, cfg.SessionSecret), log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsPut)
		r.Post("/settings/import", s.handleSettingsImport)

		r.Get("/filaments", s.handleFilamentsList)
		r.Post("/filaments", s.handleFilamentCreate)
		r.Put("/filaments/{id}", s.handleFilamentUpdate)
		r.Delete("/filaments/{id}", s.handleFilamentDelete)

		r.Get("/clients", s.handleClientsList)
		r.Post("/clients", s.handleClientCreate)
		r.Put("/clients/{id}", s.handleClientUpdate)
		r.Delete("/clients/{id}", s.handleClientDelete)

		r.Get("/fees", s.handleFeesList)
		r.Put("/fees", s.handleFeesReplace)

		r.Get("/expenses", s.handleExpensesList)
		r.Post("/expenses", s.handleExpenseCreate)
		r.Put("/expenses/{id}", s.handleExpenseUpdate)
		r.Delete("/expenses/{id}", s.handleExpenseDelete)

		r.Post("/quotes/calculate", s.handleQuoteCalculate)
		r.Get("/quotes", s.handleQuotesList)
		r.Post("/quotes", s.handleQuoteCreate)
		r.Get("/quotes/{id}", s.handleQuoteGet)
		r.Put("/quotes/{id}", s.handleQuoteUpdate)
		r.Delete("/quotes/{id}", s.handleQuoteDelete)
		r.Post("/quotes/{id}/approve", s.handleQuoteApprove)
		r.Get("/quotes/{id}/text", s.handleQuoteText)

		r.Get("/production", s.handleProductionList)
		r.Post("/production/{id}/complete", s.handleProductionComplete)

		r.Get("/ledger", s.handleLedgerList)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
