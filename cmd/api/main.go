package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/config"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/database"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	fileStore "github.com/1FabricioAntunes/backend-challenge-sub002/internal/file/store"
	cnabHttp "github.com/1FabricioAntunes/backend-challenge-sub002/internal/http"
	filesHandler "github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/files"
	storesHandler "github.com/1FabricioAntunes/backend-challenge-sub002/internal/http/stores"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/objectstore/s3"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue/sqs"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
	txStore "github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction/store"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	if cfg.Queue.URL == "" {
		slog.Error("QUEUE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

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

	var (
		storage = s3.New(s3Client, cfg.Storage.Bucket)
		fileQ   = sqs.New(sqsClient, cfg.Queue.URL, int32(cfg.Queue.WaitSeconds), int32(cfg.Queue.VisibilitySeconds))
		fileSvc = file.NewService(fileStore.New(db))
		txSvc   = transaction.NewService(txStore.New(db))
		uploads = upload.NewService(fileSvc, storage, fileQ)
	)

	var (
		filesH  = filesHandler.NewHandler(uploads, fileSvc)
		storesH = storesHandler.NewHandler(txSvc)
	)

	router := cnabHttp.New(filesH, storesH, cfg.Auth.JWTSecret)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
