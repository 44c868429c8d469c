package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}

func TestLoad_RequiresRabbitMQURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cepho")
	t.Setenv("RABBITMQ_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when RABBITMQ_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cepho")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("Expected default server port 8080, got %s", cfg.ServerPort)
	}
	if cfg.EvaluatorInterval != 60*time.Second {
		t.Errorf("Expected default evaluator interval 60s, got %s", cfg.EvaluatorInterval)
	}
	if cfg.SessionIdleTTL != 12*time.Hour {
		t.Errorf("Expected default session idle TTL 12h, got %s", cfg.SessionIdleTTL)
	}
	if cfg.RabbitMQPrefetch != 1 {
		t.Errorf("Expected default prefetch 1, got %d", cfg.RabbitMQPrefetch)
	}
}

func TestLoad_RejectsLongEvaluatorInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cepho")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	t.Setenv("EVALUATOR_INTERVAL", "5m")

	if _, err := Load(); err == nil {
		t.Error("Expected error for evaluator interval above 60s")
	}
}

func TestLoad_AcceptsShortEvaluatorInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cepho")
	t.Setenv("RABBITMQ_URL", "amqp://localhost")
	t.Setenv("EVALUATOR_INTERVAL", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.EvaluatorInterval != 15*time.Second {
		t.Errorf("Expected 15s, got %s", cfg.EvaluatorInterval)
	}
}
