package authapi

import (
	"errors"
	"testing"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("SHELF_TRUST_PROXY", "")
	t.Setenv("SHELF_AUTH_MAX_BODY_BYTES", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("SHELF_TRUST_PROXY", "true")
	t.Setenv("SHELF_AUTH_MAX_BODY_BYTES", "2048")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if !cfg.TrustProxy || cfg.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv("SHELF_AUTH_MAX_BODY_BYTES", "0")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}

	t.Setenv("SHELF_AUTH_MAX_BODY_BYTES", "lots")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}
