package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"cnab-processor"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cnab"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	AWS struct {
		Region string `envconfig:"AWS_REGION" default:"us-east-1"`
		// Endpoint overrides the AWS endpoint, e.g. for localstack. Blank
		// means the real AWS endpoints.
		Endpoint string `envconfig:"AWS_ENDPOINT"`
	}

	Storage struct {
		Bucket string `envconfig:"STORAGE_BUCKET" default:"cnab-files"`
	}

	Queue struct {
		URL               string        `envconfig:"QUEUE_URL"`
		MaxMessages       int           `envconfig:"QUEUE_MAX_MESSAGES" default:"10"`
		WaitSeconds       int           `envconfig:"QUEUE_WAIT_SECONDS" default:"20"`
		VisibilitySeconds int           `envconfig:"QUEUE_VISIBILITY_SECONDS" default:"300"`
		PollBackoff       time.Duration `envconfig:"QUEUE_POLL_BACKOFF" default:"5s"`
	}

	Notify struct {
		DLQURL            string        `envconfig:"NOTIFY_DLQ_URL"`
		Sender            string        `envconfig:"NOTIFY_SENDER" default:"cnab@localhost"`
		Recipient         string        `envconfig:"NOTIFY_RECIPIENT" default:"ops@localhost"`
		DrainInterval     time.Duration `envconfig:"NOTIFY_DRAIN_INTERVAL" default:"60s"`
		VisibilitySeconds int           `envconfig:"NOTIFY_VISIBILITY_SECONDS" default:"60"`
	}

	Metrics struct {
		Port int `envconfig:"METRICS_PORT" default:"9090"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
