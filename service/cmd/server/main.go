// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/seega/service/internal/cache"
	"github.com/jason-s-yu/seega/service/internal/config"
	"github.com/jason-s-yu/seega/service/internal/database"
	"github.com/jason-s-yu/seega/service/internal/game"
	"github.com/jason-s-yu/seega/service/internal/handlers"
	"github.com/jason-s-yu/seega/service/internal/mom"
	"github.com/jason-s-yu/seega/service/internal/server"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := config.NewLogger(cfg, os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	match, err := game.NewMatch(cfg.Rules, logger)
	if err != nil {
		return err
	}

	var (
		broker  mom.Broker
		actions server.ActionLog
		results server.ResultStore
		lister  handlers.MatchLister
	)

	switch cfg.Backend {
	case config.BackendRedis:
		rdb, err := cache.NewClient(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		broker = mom.NewRedis(rdb, logger)
		actions = cache.NewActionLog(rdb)
		logger.WithField("addr", cfg.RedisAddr).Info("using redis broker and action log")
	default:
		broker = mom.NewMemory(logger)
		logger.Info("using in-memory broker")
	}
	defer broker.Close()

	if cfg.DatabaseURL != "" {
		store, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		results = store
		lister = store
		logger.Info("match results will be stored in postgres")
	}

	dispatcher := server.NewDispatcher(match, broker, actions, results, logger)
	api := handlers.New(match, dispatcher, broker, lister, cfg.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket sessions end with the process context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.WithField("addr", cfg.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
