package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/authhero/internal/app"
	"github.com/dropDatabas3/authhero/internal/config"
	httpserver "github.com/dropDatabas3/authhero/internal/http"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

func main() {
	var (
		flagConfig  = flag.String("config", "", "ruta a config.yaml (default $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile = flag.String("env-file", ".env", "ruta a .env (opcional)")
	)
	flag.Parse()

	if *flagEnvFile != "" {
		_ = godotenv.Load(*flagEnvFile)
	}

	path := *flagConfig
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.L().Fatal("config", logger.Err(err))
	}
	log := logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ToContext(ctx, log)

	c, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal("wiring failed", logger.Err(err))
	}
	defer c.Close()

	if err := httpserver.Start(ctx, httpserver.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, c.Handler); err != nil {
		log.Error("server stopped", logger.Err(err))
		c.Close()
		os.Exit(1)
	}
	log.Info("bye")
}
