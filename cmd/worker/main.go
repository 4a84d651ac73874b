package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsses "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/config"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/database"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/ingest"
	ingestStore "github.com/1FabricioAntunes/backend-challenge-sub002/internal/ingest/store"
	promexport "github.com/1FabricioAntunes/backend-challenge-sub002/internal/metrics/prometheus"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/notify"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/notify/ses"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/objectstore/s3"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue/sqs"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Queue.URL == "" {
		slog.Error("QUEUE_URL is required")
		os.Exit(1)
	}

	if cfg.Notify.DLQURL == "" {
		slog.Error("NOTIFY_DLQ_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		slog.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s3Client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})

	sqsClient := awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	sesClient := awsses.NewFromConfig(awsCfg, func(o *awsses.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	registry := prometheus.NewRegistry()

	collector := promexport.New(cfg.App.Name)
	if err := collector.Register(registry); err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	var (
		storage = s3.New(s3Client, cfg.Storage.Bucket)
		fileQ   = sqs.New(sqsClient, cfg.Queue.URL, int32(cfg.Queue.WaitSeconds), int32(cfg.Queue.VisibilitySeconds))
		dlq     = sqs.New(sqsClient, cfg.Notify.DLQURL, 0, int32(cfg.Notify.VisibilitySeconds))
	)

	var (
		channel   = notify.NewChannel(ses.New(sesClient, cfg.Notify.Sender), dlq, cfg.Notify.Recipient, collector)
		pipeline  = ingest.NewService(ingestStore.New(db), storage, channel, collector)
		ingestion = worker.New(fileQ, pipeline, int32(cfg.Queue.MaxMessages), cfg.Queue.PollBackoff, collector)
		dlqWorker = notify.NewDLQWorker(channel, dlq, cfg.Notify.DrainInterval, int32(cfg.Queue.MaxMessages), collector)
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting ingestion worker", "queueUrl", cfg.Queue.URL)
		return ingestion.Run(ctx)
	})

	g.Go(func() error {
		slog.Info("starting dlq worker", "dlqUrl", cfg.Notify.DLQURL, "interval", cfg.Notify.DrainInterval)
		return dlqWorker.Run(ctx)
	})

	g.Go(func() error {
		slog.Info("starting metrics server", "port", cfg.Metrics.Port)

		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return metricsSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}

	slog.Info("worker stopped")
}
