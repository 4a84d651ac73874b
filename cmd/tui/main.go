package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/1FabricioAntunes/backend-challenge-sub002/cmd/tui/internal/view"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/config"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/database"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/file"
	fileStore "github.com/1FabricioAntunes/backend-challenge-sub002/internal/file/store"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/objectstore/s3"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/queue/sqs"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
	txStore "github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction/store"
	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/upload"
)

type model struct {
	fileService   *file.Service
	txService     *transaction.Service
	uploadService *upload.Service

	currentView View

	dashboardView view.DashboardModel
	uploadView    view.UploadModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewUpload    View = 2
)

func initialModel() model {
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

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

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

	return model{
		fileService:   fileSvc,
		txService:     txSvc,
		uploadService: uploads,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(fileSvc, txSvc),
		uploadView:    view.NewUploadModel(uploads),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.fileService, m.txService)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.uploadService)

				return m, m.uploadView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"CNAB Processor TUI\n\n" +
				"1. Dashboard\n" +
				"2. Upload CNAB File\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewUpload:
		return m.uploadView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
