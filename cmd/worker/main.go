package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cyoa-server/internal/app"
	"cyoa-server/internal/config"
	"cyoa-server/internal/jobs"
	"cyoa-server/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("Starting cyoa worker",
		zap.String("env", cfg.Env),
		zap.String("queue", cfg.Jobs.Queue),
		zap.String("image_backend", cfg.Image.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := app.NewCore(ctx, log, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer core.Close()

	conn, err := amqp.Dial(cfg.Jobs.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	if cfg.Jobs.PushGatewayURL != "" {
		pusher := jobs.NewMetricsPusher(log, cfg.Jobs.PushGatewayURL, prometheus.DefaultGatherer)
		go pusher.Run(ctx, cfg.Jobs.PushInterval)
	}

	if cfg.Jobs.StaleAfter > 0 {
		sweeper := jobs.NewStaleSweeper(log, core.Pool, core.Jobs, cfg.Jobs.StaleAfter)
		go sweeper.Run(ctx, cfg.Jobs.SweepInterval)
	}

	runner := jobs.NewRunner(log, core.Pool, core.Jobs, core.Generator, cfg.Jobs.JobTimeout)
	consumer := jobs.NewConsumer(log, conn, cfg.Jobs.Queue, runner)

	if err := consumer.Start(ctx); err != nil {
		log.Error("Consumer stopped with error", zap.Error(err))
		return
	}
	log.Info("Worker exited")
}
