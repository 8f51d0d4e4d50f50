package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	authapi "shelf/cmd/internal/auth/api"
	"shelf/cmd/internal/auth/idpolicy"
	"shelf/cmd/internal/auth/ratelimit"
	"shelf/cmd/internal/auth/session"
	"shelf/cmd/security/password"
	"shelf/cmd/security/token"
)

// Log formats accepted by Config.LogFormat.
const (
	LogFormatJSON   = "json"
	LogFormatPretty = "pretty"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	// HTTPAddr is the plaintext listener. With TLS configured it only redirects
	// to HTTPSAddr; without TLS it serves the API directly.
	HTTPAddr  string `env:"SHELF_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	HTTPSAddr string `env:"SHELF_HTTPS_ADDR" envDefault:"0.0.0.0:8443"`

	TLSCertFile string `env:"SHELF_TLS_CERT_FILE"`
	TLSKeyFile  string `env:"SHELF_TLS_KEY_FILE"`

	LogLevel  string `env:"SHELF_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SHELF_LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"SHELF_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"SHELF_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"SHELF_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"SHELF_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SHELF_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxHeaderBytes    int           `env:"SHELF_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"SHELF_DATABASE_URL"`
	DBMaxConns  int32  `env:"SHELF_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"SHELF_DB_MIN_CONNS" envDefault:"0"`

	// Migrate applies the embedded schema migrations at startup.
	Migrate bool `env:"SHELF_MIGRATE" envDefault:"false"`

	CORSAllowedOrigins   []string `env:"SHELF_CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"SHELF_CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	CORSMaxAgeSeconds    int      `env:"SHELF_CORS_MAX_AGE_SECONDS" envDefault:"600"`

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool `env:"SHELF_READINESS_REQUIRE_DB" envDefault:"false"`

	Password  password.Config
	Token     token.Config
	Session   session.Config
	Policy    idpolicy.Config
	RateLimit ratelimit.Config
	Auth      authapi.Config
}

// DefaultConfig returns development defaults. Secrets are left empty.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:             "0.0.0.0:8080",
		HTTPSAddr:            "0.0.0.0:8443",
		LogLevel:             "info",
		LogFormat:            LogFormatJSON,
		ReadHeaderTimeout:    5 * time.Second,
		ReadTimeout:          15 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		ShutdownTimeout:      10 * time.Second,
		MaxHeaderBytes:       1 << 20,
		DBMaxConns:           10,
		CORSAllowCredentials: true,
		CORSMaxAgeSeconds:    600,
		Password:             password.DefaultConfig(),
		Token:                token.Config{ExpirationHours: 24},
		Session:              session.DefaultConfig(),
		Policy:               idpolicy.DefaultConfig(),
		RateLimit:            ratelimit.DefaultConfig(),
		Auth:                 authapi.DefaultConfig(),
	}
}

// TLSEnabled reports whether both halves of a key pair are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Validate checks process-level settings. Package configs validate themselves
// in their constructors and secrets are checked by ValidateSecurityConfig.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("%w: http addr is empty", ErrConfig)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("%w: tls cert and key must be set together", ErrConfig)
	}
	if c.TLSEnabled() && strings.TrimSpace(c.HTTPSAddr) == "" {
		return fmt.Errorf("%w: https addr is empty", ErrConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case LogFormatJSON, LogFormatPretty:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrConfig, c.LogFormat)
	}
	if c.DBMinConns < 0 || c.DBMaxConns < 0 || (c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns) {
		return fmt.Errorf("%w: db pool bounds", ErrConfig)
	}
	if c.Session.BackendName() == session.BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("%w: postgres session backend requires SHELF_DATABASE_URL", ErrConfig)
	}
	return nil
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Session.Backend = cfg.Session.BackendName()
	return cfg, nil
}
