package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("backend base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.PollInterval() != 30*time.Second {
		t.Errorf("poll interval = %v", cfg.PollInterval())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.GCP.UseSecrets {
		t.Error("secrets enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KNO_BACKEND_URL", "https://api.example.com")
	t.Setenv("KNO_BACKEND_EMAIL", "ops@example.com")
	t.Setenv("KNO_BACKEND_TOKEN", "tok-123")
	t.Setenv("KNO_PRICE_URL", "https://price.example.com/api/kno/price")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("backend base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Email != "ops@example.com" {
		t.Errorf("backend email = %q", cfg.Backend.Email)
	}
	if cfg.Backend.Token != "tok-123" {
		t.Errorf("backend token = %q", cfg.Backend.Token)
	}
	if cfg.Price.URL != "https://price.example.com/api/kno/price" {
		t.Errorf("price url = %q", cfg.Price.URL)
	}
}
