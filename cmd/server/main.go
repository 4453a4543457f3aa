package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/adapters"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/bootstrap"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/eval"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/search"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/web"
)

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		NewLogger("info").Fatalw("Failed to setup configuration", "error", err)
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, closeStore, err := initHandler(ctx, logger, cfg)
	if err != nil {
		logger.Fatalw("Failed to initialize server", "error", err)
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           middleware.Logger(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go handleShutdown(ctx, cancel, srv, logger)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
	<-ctx.Done()
	logger.Info("Server stopped")
}

// NewLogger builds a production logger; "debug" switches to the development config.
func NewLogger(level string) *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if lvl, perr := zapcore.ParseLevel(level); perr == nil {
			zcfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zcfg.Build()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

// initHandler loads the score tables, opens the store and builds the router.
// The returned func releases the store.
func initHandler(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (http.Handler, func(), error) {
	tables, err := eval.Load(cfg.SubTablePath, cfg.LargeTablePath)
	if err != nil {
		return nil, nil, err
	}
	log.Infow("Score tables loaded", "sub", len(tables.Sub), "large", len(tables.Large))

	store, closeStore, err := initStore(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := app.NewService(app.Config{
		Tables: tables,
		Search: search.Config{Depth: cfg.SearchDepth, Workers: cfg.SearchWorkers},
		Store:  store,
		Log:    log,
	})
	return web.NewServer(svc, log), closeStore, nil
}

func initStore(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (app.Store, func(), error) {
	if cfg.RedisUrl == "" {
		log.Info("REDIS_URL not set, games are kept in memory")
		return app.NewMemoryStore(), func() {}, nil
	}
	redisAdapter := adapters.NewAdapterRedis(cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		return nil, nil, err
	}
	log.Infow("Redis store initialized", "ttl", cfg.GameTTL)
	return app.NewRedisStore(redisAdapter.GetClient(), cfg.GameTTL), func() {
		_ = redisAdapter.Close(ctx)
	}, nil
}

func handleShutdown(ctx context.Context, cancelFunc context.CancelFunc, srv *http.Server, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigs:
	case <-ctx.Done():
		return
	}
	log.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Shutdown", "error", err)
	}
	cancelFunc()
}
