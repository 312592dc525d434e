package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORE_DRIVER")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_RelayConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RELAY_BASE_URL", "https://relay.example.com/api/fussballde")
	t.Setenv("RELAY_TIMEOUT", "7s")
	t.Setenv("RELAY_MAX_RETRIES", "3")
	t.Setenv("RELAY_PACING_INTERVAL", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RelayBaseURL != "https://relay.example.com/api/fussballde" {
		t.Fatalf("unexpected RelayBaseURL: %q", cfg.RelayBaseURL)
	}
	if cfg.RelayTimeout != 7*time.Second {
		t.Fatalf("unexpected RelayTimeout: %s", cfg.RelayTimeout)
	}
	if cfg.RelayMaxRetries != 3 {
		t.Fatalf("unexpected RelayMaxRetries: %d", cfg.RelayMaxRetries)
	}
	if cfg.RelayPacingInterval != 250*time.Millisecond {
		t.Fatalf("unexpected RelayPacingInterval: %s", cfg.RelayPacingInterval)
	}
}

func TestLoad_RelayPacingIntervalMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RELAY_PACING_INTERVAL", "-1s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-positive RELAY_PACING_INTERVAL")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("expected default StoreDriver=postgres, got %q", cfg.StoreDriver)
	}
	if cfg.AggregationWindowDays != 35 {
		t.Fatalf("expected default AggregationWindowDays=35, got %d", cfg.AggregationWindowDays)
	}
	if cfg.KeepAgeCategories {
		t.Fatalf("expected default KeepAgeCategories=false")
	}
	if cfg.RelayPacingInterval != 500*time.Millisecond {
		t.Fatalf("expected default RELAY_PACING_INTERVAL=500ms, got %s", cfg.RelayPacingInterval)
	}
	if cfg.SyncMaxWorkers != 1 {
		t.Fatalf("expected default SYNC_MAX_WORKERS=1, got %d", cfg.SyncMaxWorkers)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected default CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_AggregationWindowMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AGGREGATION_WINDOW_DAYS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for AGGREGATION_WINDOW_DAYS=0")
	}
}
