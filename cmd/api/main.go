package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/application"
	appanalysis "github.com/bryanwahyu/chat-pattern-explorer/internal/application/analysis"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/application/workspace"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/config"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/ai/openai"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/backend"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/httpserver"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/logging"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/middleware"
)

func main() {
	// .env dulu, supaya API key bisa dibaca config
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("dotenv error: %v", err)
	}

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured; every analysis will fail")
	}

	ctx := context.Background()

	// init store
	be, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init error", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}()

	// init workspace, saved list harus ke-load sebelum serve
	ws := workspace.New(be.Store, application.SystemClock{}, logger)
	if err := ws.Load(ctx); err != nil {
		logger.Fatal("load saved results", zap.Error(err))
	}

	// init service
	client := openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, nil)
	svc := appanalysis.NewService(client, logger)

	checks := map[string]middleware.HealthChecker{
		"workspace": middleware.CheckerFunc(func(context.Context) error {
			if ws.State() != workspace.Ready {
				return errors.New(ws.State().String())
			}
			return nil
		}),
	}
	if be.Ping != nil {
		checks["storage"] = middleware.CheckerFunc(be.Ping)
	}

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(ws, svc, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadMB:    cfg.Server.MaxUploadMB,
		Health:         checks,
		Metrics:        middleware.NewMetrics(),
		Log:            logger,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("storage", be.Driver),
			zap.String("model", client.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
