package session

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if cfg.TTL() != 20*time.Minute {
		t.Fatalf("TTL=%v want 20m", cfg.TTL())
	}
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"SHELF_SESSION_BACKEND":    "redis",
		"SHELF_SESSION_TIMEOUT":    "0",
		"SHELF_SESSION_OP_TIMEOUT": "-1s",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig for %s=%s, got %v", k, v, err)
			}
		})
	}
}

func TestLoadConfigFromEnv_Bolt(t *testing.T) {
	t.Setenv("SHELF_SESSION_BACKEND", "bolt")
	t.Setenv("SHELF_SESSION_BOLT_PATH", "/tmp/x.db")
	t.Setenv("SHELF_SESSION_TIMEOUT", "45")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Backend != BackendBolt || cfg.BoltPath != "/tmp/x.db" || cfg.TTL() != 45*time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfig_BackendNameIgnoresCase(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"memory", BackendMemory},
		{"Postgres", BackendPostgres},
		{" POSTGRES ", BackendPostgres},
		{"Bolt", BackendBolt},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = tc.raw
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate(%q): %v", tc.raw, err)
			}
			if got := cfg.BackendName(); got != tc.want {
				t.Fatalf("BackendName(%q)=%q want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestLoadConfigFromEnv_NormalizesBackend(t *testing.T) {
	t.Setenv("SHELF_SESSION_BACKEND", " Postgres")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.Backend != BackendPostgres {
		t.Fatalf("Backend=%q want %q", cfg.Backend, BackendPostgres)
	}
}
