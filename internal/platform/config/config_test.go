package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:        "development",
		JWTSecret:          "dev-secret",
		SessionTTL:         time.Hour,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 20,
		PayslipStorage:     PayslipStorageLocal,
		PayslipDir:         "storage/payslips",
		NotifyWorkers:      2,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"development defaults", func(c *Config) {}, ""},
		{"production needs database", func(c *Config) {
			c.Environment = "production"
			c.JWTSecret = strings.Repeat("s", 32)
		}, "DATABASE_URL"},
		{"production needs strong secret", func(c *Config) {
			c.Environment = "production"
			c.DatabaseURL = "postgres://localhost/hr"
		}, "JWT_SECRET"},
		{"production refuses demo data", func(c *Config) {
			c.Environment = "production"
			c.DatabaseURL = "postgres://localhost/hr"
			c.JWTSecret = strings.Repeat("s", 32)
			c.SeedDemoData = true
		}, "SEED_DEMO_DATA"},
		{"non-positive session ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
		{"tiny body limit", func(c *Config) { c.MaxBodyBytes = 10 }, "MAX_BODY_BYTES"},
		{"minio without credentials", func(c *Config) { c.PayslipStorage = PayslipStorageMinIO }, "S3_ENDPOINT"},
		{"unknown storage", func(c *Config) { c.PayslipStorage = "ftp" }, "PAYSLIP_STORAGE"},
		{"email without host", func(c *Config) { c.EmailEnabled = true }, "SMTP_HOST"},
		{"no notify workers", func(c *Config) { c.NotifyWorkers = 0 }, "NOTIFY_WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_ORIGINS", " https://a.example , ,https://b.example")
	got := getEnvList("TEST_ORIGINS", []string{"*"})
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list %v", got)
	}

	t.Setenv("TEST_ORIGINS", " , ")
	if got := getEnvList("TEST_ORIGINS", []string{"*"}); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestTypedGettersFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_BOOL", "true")
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if got := getEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %s", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
}
