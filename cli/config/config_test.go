package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poliver.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.example.com
  token: tok_123
  timeout: 45s
checkout:
  store: redis
  redis_url: redis://localhost:6379/1
  success_url: https://app.example.com/payment/success
  cancel_url: https://app.example.com/payment/cancel
adapter:
  type: webhook
  url: https://hooks.example.com/poliver
  headers:
    Authorization: Bearer hook-token
  timeout: 10s
verify:
  mode: balanced
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.Token != "tok_123" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.Timeout.Duration != 45*time.Second {
		t.Errorf("timeout = %v", cfg.API.Timeout.Duration)
	}
	if cfg.Checkout.Store != "redis" || cfg.Checkout.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("checkout = %+v", cfg.Checkout)
	}
	if cfg.Adapter.Type != "webhook" || cfg.Adapter.Headers["Authorization"] != "Bearer hook-token" {
		t.Errorf("adapter = %+v", cfg.Adapter)
	}
	if cfg.Verify.Mode != "balanced" {
		t.Errorf("verify mode = %q", cfg.Verify.Mode)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "api: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("POLIVER_TOKEN", "tok_from_env")
	path := writeConfig(t, `
api:
  base_url: ${POLIVER_BASE_URL:-https://api.example.com}
  token: ${POLIVER_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Token != "tok_from_env" {
		t.Errorf("token = %q, want env value", cfg.API.Token)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("base_url = %q, want default", cfg.API.BaseURL)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SET_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	cases := []struct {
		in   string
		want string
	}{
		{"${SET_VAR}", "value"},
		{"${UNSET_VAR}", ""},
		{"${UNSET_VAR:-fallback}", "fallback"},
		{"${EMPTY_VAR:-fallback}", "fallback"},
		{"${SET_VAR:-fallback}", "value"},
		{"prefix-${SET_VAR}-suffix", "prefix-value-suffix"},
		{"no vars here", "no vars here"},
	}
	for _, tc := range cases {
		if got := ExpandEnv(tc.in); got != tc.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDuration_Invalid(t *testing.T) {
	path := writeConfig(t, "api:\n  timeout: banana\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
