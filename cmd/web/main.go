package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matchplay/internal/auth"
	"matchplay/internal/config"
	"matchplay/internal/content"
	"matchplay/internal/handlers"
	"matchplay/internal/logger"
	"matchplay/internal/metrics"
	"matchplay/internal/playcount"
	"matchplay/internal/session"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pairsSink, memorizeSink, closeSinks := openSinks(ctx, cfg)
	defer closeSinks()
	pairsCounter := playcount.NewNotifier(pairsSink, playcount.DefaultTimeout, string(session.VariantPairs))
	memorizeCounter := playcount.NewNotifier(memorizeSink, playcount.DefaultTimeout, string(session.VariantMemorize))

	store := session.NewStore(session.Factory{
		Content: contentSource(cfg),
		Images:  content.DefaultImages(),
		Counters: map[session.Variant]session.PlayCounter{
			session.VariantPairs:    pairsCounter,
			session.VariantMemorize: memorizeCounter,
		},
		Pairs: session.PairsOptions{Rounds: cfg.PairsRounds},
		Memorize: session.MemorizeOptions{
			ShowCount:   cfg.MemorizeShowCount,
			OptionCount: cfg.MemorizeOptionCount,
			ShowFor:     cfg.MemorizeShow,
			TotalTime:   cfg.MemorizeTotalSec,
		},
	})
	go store.RunSweeper(ctx, time.Minute, cfg.SessionTTL)

	tickets, err := auth.NewTickets(cfg.SessionSecret, cfg.SessionTTL+session.MaxSessionAge)
	if err != nil {
		logger.Fatal("invalid session secret", "error", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	homeHandler := handlers.NewHomeHandler(store, tickets)
	sessionHandler := handlers.NewSessionHandler(store, tickets, cfg.BaseURL)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		homeHandler.RegisterRoutes(r)
	})
	sessionHandler.RegisterRoutes(r)

	// No WriteTimeout: the stream and ws routes stay open. Request contexts
	// derive from ctx so those streams end when a signal arrives.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", "http://localhost"+cfg.Addr(), "playcount", cfg.PlayCountBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	pairsCounter.Wait()
	memorizeCounter.Wait()
}

// contentSource chains the remote API, the optional Redis cache and the
// built-in default set.
func contentSource(cfg *config.Config) content.Source {
	var src content.Source
	if cfg.ContentAPIURL != "" {
		src = content.NewHTTPSource(cfg.ContentAPIURL, cfg.ContentTimeout)
		if cfg.RedisAddr != "" {
			client := content.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			src = content.NewRedisCache(client, src, cfg.ContentCacheTTL)
		}
	}
	return content.WithFallback(src, content.DefaultPairs())
}

// openSinks picks the play-count backend. The memorize game reports by
// path, the pairs game in the request body.
func openSinks(ctx context.Context, cfg *config.Config) (pairs, memo playcount.Sink, closeFn func()) {
	closeFn = func() {}
	switch cfg.PlayCountBackend {
	case config.BackendHTTP:
		if cfg.PlayCountAPIURL == "" {
			logger.Warn("PLAYCOUNT_API_URL is not set, play counts disabled")
			return nil, nil, closeFn
		}
		return playcount.NewHTTPSink(cfg.PlayCountAPIURL, playcount.BodyStyle, playcount.DefaultTimeout),
			playcount.NewHTTPSink(cfg.PlayCountAPIURL, playcount.PathStyle, playcount.DefaultTimeout),
			closeFn
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pg, err := playcount.ConnectPostgres(connectCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect play-count database", "error", err)
		}
		if err := pg.Migrate(connectCtx); err != nil {
			logger.Fatal("failed to migrate play-count database", "error", err)
		}
		return pg, pg, pg.Close
	case config.BackendSQLite:
		lite, err := playcount.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open play-count database", "error", err)
		}
		logger.Info("database connected", "backend", "sqlite", "path", cfg.SQLitePath)
		return lite, lite, func() { _ = lite.Close() }
	case config.BackendNone:
		return nil, nil, closeFn
	default:
		logger.Warn("unknown play-count backend, play counts disabled", "backend", cfg.PlayCountBackend)
		return nil, nil, closeFn
	}
}
