package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8090" {
		t.Fatalf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
backend:
  base_url: https://api.example.com
  api_key: sk_file
state:
  path: /var/lib/esign/state.db
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ESIGN_API_KEY", "sk_env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Fatalf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIKey != "sk_env" {
		t.Fatalf("env override lost, api key = %q", cfg.Backend.APIKey)
	}
	if cfg.State.Path != "/var/lib/esign/state.db" {
		t.Fatalf("state path = %q", cfg.State.Path)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
