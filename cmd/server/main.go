package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/mercury/internal/config"
	"github.com/Simplici0/mercury/internal/db"
	"github.com/Simplici0/mercury/internal/engine"
	"github.com/Simplici0/mercury/internal/logging"
	"github.com/Simplici0/mercury/internal/metrics"
	"github.com/Simplici0/mercury/internal/migrations"
	"github.com/Simplici0/mercury/internal/source"
)

type server struct {
	engine  *engine.Engine
	logger  *zap.Logger
	metrics *metrics.Recorder
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		// The logger itself is unusable; fall back to a default production logger.
		logger = zap.Must(zap.NewProduction())
		logger.Warn("invalid LOG_LEVEL, using info", zap.String("level", cfg.LogLevel), zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("configuration", zap.String("warning", w))
	}

	eng := engine.New(engine.Defaults{BatchSize: cfg.DefaultBatchSize, Margin: cfg.DefaultMargin}, logger)
	recorder := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := catalogSource(ctx, cfg)
	if err != nil {
		eng.Fail(err)
	} else {
		defer closeSrc()
		loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
		if err := eng.Load(loadCtx, src); err == nil {
			if ready, ok := eng.State().(engine.Ready); ok {
				recorder.SetCatalogSize(len(ready.Catalog))
			}
			logger.Info("cost model initialized successfully")
		}
		cancel()
	}

	srv := &server{engine: eng, logger: logger, metrics: recorder}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/calculate-cost", s.handleCalculateCost)
	r.Post("/sensitivity-analysis", s.handleSensitivityAnalysis)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// catalogSource builds the configured catalog source and a func releasing it.
func catalogSource(ctx context.Context, cfg config.Config) (source.CatalogSource, func(), error) {
	if cfg.UsesSQLiteCatalog() {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, &source.LoadError{Source: cfg.DBPath, Err: err}
		}
		if err := migrations.Up(database); err != nil {
			database.Close()
			return nil, nil, &source.LoadError{Source: cfg.DBPath, Err: err}
		}
		return source.Store{DB: database}, func() { _ = database.Close() }, nil
	}

	doc, err := source.OpenDocument(ctx, cfg.CatalogSource, source.Options{
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
		S3Region:   cfg.S3Region,
		S3Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return nil, nil, &source.LoadError{Source: cfg.CatalogSource, Err: err}
	}
	return source.Catalog(doc), func() {}, nil
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveRequest(route, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
