package password

import (
	"errors"
	"testing"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("SHELF_AUTH_SALT", "pepper")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg.Params != def.Params {
		t.Fatalf("params mismatch: %+v want %+v", cfg.Params, def.Params)
	}
	if cfg.Policy.MinLength != 6 || cfg.Policy.MaxLength != 256 {
		t.Fatalf("policy mismatch: %+v", cfg.Policy)
	}
	if cfg.AuthSalt != "pepper" {
		t.Fatalf("auth salt not loaded")
	}
}

func TestLoadConfigFromEnv_Override(t *testing.T) {
	t.Setenv("SHELF_AUTH_SALT", "pepper")
	t.Setenv("SHELF_HASH_WORKERS", "3")
	t.Setenv("SHELF_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("SHELF_ARGON2_ITERATIONS", "4")
	t.Setenv("SHELF_PASSWORD_MIN_LEN", "10")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv error: %v", err)
	}
	if cfg.Workers != 3 || cfg.Params.MemoryKiB != 8192 || cfg.Params.Iterations != 4 || cfg.Policy.MinLength != 10 {
		t.Fatalf("override failed: %+v", cfg)
	}
}

func TestLoadConfigFromEnv_MissingAuthSalt(t *testing.T) {
	t.Setenv("SHELF_AUTH_SALT", "")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidMinMax(t *testing.T) {
	t.Setenv("SHELF_AUTH_SALT", "pepper")
	t.Setenv("SHELF_PASSWORD_MIN_LEN", "20")
	t.Setenv("SHELF_PASSWORD_MAX_LEN", "10")

	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
