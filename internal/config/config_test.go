package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:        AppConfig{Env: "local", Port: 8080},
		DB:         DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "calllogs", SSLMode: "disable"},
		Redis:      RedisConfig{Host: "localhost", Port: 6379},
		Auth:       AuthConfig{JWTSecret: "secret"},
		ElevenLabs: ElevenLabsConfig{APIKey: "xi-key"},
	}
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_RequiresElevenLabsAPIKey(t *testing.T) {
	c := validConfig()
	c.ElevenLabs.APIKey = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error without ELEVENLABS_API_KEY")
	}
}

func TestValidate_ProductionRequiresWebhookSecrets(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.Auth.JWTIssuer = "call-logs"
	c.Auth.JWTAudience = "call-logs-api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error without webhook secrets in production")
	}
	c.Vapi.WebhookSecret = "vs"
	c.ElevenLabs.WebhookSecret = "es"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_AppliesSyncDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Sync.Interval != 10*time.Minute {
		t.Fatalf("expected default interval, got %v", c.Sync.Interval)
	}
	if c.Sync.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts, got %d", c.Sync.RetryMaxAttempts)
	}
	if c.Sync.LockTTL != c.Sync.Interval {
		t.Fatalf("expected lock TTL to follow interval, got %v", c.Sync.LockTTL)
	}
}
