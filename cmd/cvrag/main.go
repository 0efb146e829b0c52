package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/razmarrus/cv-rag/internal/app"
	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/server"
	"github.com/razmarrus/cv-rag/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	webDir := flag.String("web", "web", "directory with templates/ and static/, empty disables the HTML front end")
	flag.Parse()

	// Local development keeps secrets in a .env file; a missing file is
	// fine in deployment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("cvrag")

	svc, dbHealth, err := app.BuildService(cfg, log)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer app.CloseConnections(cfg, log)

	opts := server.Options{
		DBHealth: server.HealthFunc(dbHealth),
		WebDir:   *webDir,
	}
	if cfg.Middleware.RateLimiter.Enabled {
		opts.RateLimiter = app.BuildRateLimiter(cfg.Middleware.RateLimiter)
	}
	if cfg.Middleware.CircuitBreaker.Enabled {
		opts.Breaker = app.BuildBreaker(cfg.Middleware.CircuitBreaker)
	}

	srv := server.New(svc, cfg, opts, log)

	httpServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: srv.Engine(),
	}

	go func() {
		log.Info("Listening on " + httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed: " + err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed: " + err.Error())
	}
}
