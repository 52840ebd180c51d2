package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `environment: production
server:
  port: 9090
  enable_cors: true
redis:
  addr: localhost:6379
kafka:
  brokers:
    - localhost:9092
  topics:
    reel_events: custom.events
jwt:
  secret: s3cret
webhook:
  url: http://hooks.local/spin
  timeout: 2s
reels:
  config_path: ./reels
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Errorf("expected production environment, got %s", cfg.Environment)
	}
	if cfg.Server.Port != 9090 || !cfg.Server.EnableCORS {
		t.Errorf("expected port 9090 with CORS, got %d/%v", cfg.Server.Port, cfg.Server.EnableCORS)
	}
	if !cfg.Redis.Enabled() || !cfg.Kafka.Enabled() {
		t.Error("expected redis and kafka enabled")
	}
	if got := cfg.Kafka.Topic(TopicReelEvents); got != "custom.events" {
		t.Errorf("expected custom.events, got %s", got)
	}
	if got := cfg.Kafka.Topic(TopicNameCommands); got != "lucky-draw.name-commands" {
		t.Errorf("expected default name command topic, got %s", got)
	}
	if cfg.Webhook.Timeout != 2*time.Second {
		t.Errorf("expected webhook timeout 2s, got %v", cfg.Webhook.Timeout)
	}
	if cfg.Reels.ConfigPath != "./reels" {
		t.Errorf("expected reels path ./reels, got %s", cfg.Reels.ConfigPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"port", cfg.Server.Port, 8080},
		{"write timeout", cfg.Server.WriteTimeout, 30 * time.Second},
		{"redis prefix", cfg.Redis.KeyPrefix, "reel:names:"},
		{"log level", cfg.Logging.Level, "info"},
		{"time scale", cfg.Reels.TimeScale, 1.0},
		{"stream buffer", cfg.Reels.Buffer, 128},
		{"jwt expiration", cfg.JWT.Expiration, 12 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	if cfg.Redis.Enabled() || cfg.Kafka.Enabled() {
		t.Error("expected redis and kafka disabled by default")
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
