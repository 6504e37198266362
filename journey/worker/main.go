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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/activities"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/config"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/logging"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/metrics"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage/sqlite"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/workflows"
)

func main() {
	var cfg config.Worker
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalln("Unable to load configuration", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalln("Unable to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Worker stopped", zap.Error(err))
	}
}

func run(cfg config.Worker, logger *zap.Logger) error {
	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
		Logger:   logging.NewTemporalLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("dial temporal: %w", err)
	}
	defer c.Close()

	db, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	identity := "journey-worker-" + hostname()
	w := worker.New(c, cfg.TaskQueue, worker.Options{
		Identity:                               identity,
		MaxConcurrentActivityExecutionSize:     cfg.MaxConcurrent,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.JourneyWorkflow)

	// Persistence activities
	persistence := &activities.PersistenceActivities{Storage: db, Metrics: m, Logger: logger}
	w.RegisterActivity(persistence.LoadSnapshot)
	w.RegisterActivity(persistence.SaveSnapshot)

	// Payment activities
	payments := &activities.PaymentActivities{Metrics: m}
	w.RegisterActivity(payments.ProcessPayment)

	// Audio activities
	audio := &activities.AudioActivities{}
	w.RegisterActivity(audio.PlayCue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		interrupt := make(chan interface{})
		go func() {
			<-ctx.Done()
			close(interrupt)
		}()
		logger.Info("Worker starting",
			zap.String("taskQueue", cfg.TaskQueue),
			zap.String("identity", identity),
			zap.String("metricsAddr", cfg.MetricsAddr),
			zap.String("db", cfg.StoragePath))
		if err := w.Run(interrupt); err != nil {
			return fmt.Errorf("run worker: %w", err)
		}
		stop()
		return nil
	})

	return g.Wait()
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
