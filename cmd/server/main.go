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

	"cyoa-server/internal/app"
	"cyoa-server/internal/config"
	delivery "cyoa-server/internal/delivery/http"
	"cyoa-server/internal/jobs"
	"cyoa-server/internal/logger"
	"cyoa-server/pkg/taskmanager"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a schema command (up, down, version) and exit")
	flag.Parse()

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

	log.Info("Starting cyoa server",
		zap.String("env", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("image_backend", cfg.Image.Backend),
		zap.String("dispatcher", cfg.Jobs.Dispatcher),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateCmd != "" {
		if err := app.RunMigrateCommand(ctx, log, cfg, *migrateCmd); err != nil {
			log.Fatal("Migration command failed", zap.String("command", *migrateCmd), zap.Error(err))
		}
		log.Info("Migration command finished", zap.String("command", *migrateCmd))
		return
	}

	core, err := app.NewCore(ctx, log, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer core.Close()

	var (
		dispatcher jobs.Dispatcher
		tasks      *taskmanager.TaskManager
		amqpConn   *amqp.Connection
	)
	switch cfg.Jobs.Dispatcher {
	case config.DispatcherAMQP:
		amqpConn, err = amqp.Dial(cfg.Jobs.AMQPURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer amqpConn.Close()

		amqpDispatcher, err := jobs.NewAMQPDispatcher(log, amqpConn, cfg.Jobs.Queue)
		if err != nil {
			log.Fatal("Failed to create AMQP dispatcher", zap.Error(err))
		}
		defer amqpDispatcher.Close()
		dispatcher = amqpDispatcher
	default:
		tasks = taskmanager.New(log, taskmanager.Config{MaxTasks: cfg.Jobs.MaxLocalTasks})
		runner := jobs.NewRunner(log, core.Pool, core.Jobs, core.Generator, cfg.Jobs.JobTimeout)
		local := jobs.NewLocalDispatcher(log, tasks, runner)
		go local.RunCleanup(ctx, cfg.Jobs.TaskRetention)
		dispatcher = local
	}

	if cfg.Jobs.StaleAfter > 0 {
		sweeper := jobs.NewStaleSweeper(log, core.Pool, core.Jobs, cfg.Jobs.StaleAfter)
		go sweeper.Run(ctx, cfg.Jobs.SweepInterval)
	}

	jobService := jobs.NewService(log, core.Pool, core.Jobs, dispatcher)

	gin.SetMode(gin.ReleaseMode)
	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	}
	handler := delivery.NewStoryHandler(log, jobService, core.Reader, delivery.SessionConfig{
		Secure: cfg.HTTP.CookieSecure,
		MaxAge: cfg.HTTP.CookieMaxAge,
	})
	router := delivery.NewRouter(log, delivery.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		EnableMetrics:  true,
	}, handler)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Ответы короткие: генерация идет в фоне.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	if tasks != nil {
		if err := tasks.Shutdown(shutdownCtx); err != nil {
			log.Warn("Background jobs did not finish before shutdown", zap.Error(err))
		}
	}

	log.Info("Server exited")
}
