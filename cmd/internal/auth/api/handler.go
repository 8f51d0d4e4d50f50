// Package authapi is the HTTP surface of authentication: login, logout and
// the current-user endpoint, plus the identity, rate-limit and auth
// middlewares that guard them.
package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"shelf/cmd/identity"
	"shelf/cmd/internal/auth/idpolicy"
	"shelf/cmd/internal/auth/ratelimit"
	"shelf/cmd/security/password"
	"shelf/cmd/security/token"
)

// Authenticator checks credentials and resolves users.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (identity.User, error)
	User(ctx context.Context, id uuid.UUID) (identity.User, error)
}

// TokenService issues and verifies signed claims.
type TokenService interface {
	TokenVerifier
	NewClaim(userID uuid.UUID, email string, now time.Time) token.Claim
	Issue(c token.Claim) (string, error)
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Users    Authenticator
	Tokens   TokenService
	Policy   idpolicy.Policy
	Limiter  *ratelimit.Limiter
	Password password.Policy
	Metrics  *Metrics
}

// Handler wires HTTP auth endpoints to identity and token services.
type Handler struct {
	log  *slog.Logger
	cfg  Config
	deps Deps
	now  func() time.Time
}

// HandlerOption configures optional handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source used for token issue and verification.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if h == nil || now == nil {
			return
		}
		h.now = now
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, deps Deps, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Users == nil || deps.Tokens == nil || deps.Policy == nil || deps.Limiter == nil {
		return nil, errors.New("authapi: missing dependency")
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}

	h := &Handler{
		log:  log,
		cfg:  cfg,
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires auth routes onto r.
//
// Every route gets the identity and rate-limit middlewares; /me also
// requires authentication.
func (h *Handler) Register(r *mux.Router) {
	if h == nil || r == nil {
		return
	}

	identityMW := IdentityMiddleware(h.deps.Policy, h.log)
	limitMW := RateLimitMiddleware(h.deps.Limiter, h.cfg.TrustProxy, h.deps.Metrics, h.log)

	v1 := r.PathPrefix("/api/v1/auth").Subrouter()
	v1.Use(identityMW, limitMW)
	v1.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)

	requireAuth := RequireAuth(h.deps.Tokens, h.deps.Metrics, h.log, h.now)
	v1.Handle("/me", requireAuth(http.HandlerFunc(h.handleMe))).Methods(http.MethodGet)

	ext := r.PathPrefix("/api/ext/v1").Subrouter()
	ext.Use(identityMW, limitMW)
	ext.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	ip := clientIP(r, h.cfg.TrustProxy)
	email := strings.TrimSpace(req.Email)

	if err := identity.ValidateEmail(email); err != nil {
		h.deps.Metrics.Logins.WithLabelValues("invalid_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}
	if err := h.deps.Password.ValidateLogin(req.Password); err != nil {
		h.deps.Metrics.Logins.WithLabelValues("invalid_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.deps.Users.Authenticate(ctx, email, req.Password)
	if err != nil {
		if identity.IsInvalidCredentials(err) {
			h.deps.Metrics.Logins.WithLabelValues("invalid_credentials").Inc()
			h.auditLoginFailed(ctx, ip, email, "invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		h.deps.Metrics.Logins.WithLabelValues("error").Inc()
		h.log.Error("auth.login.lookup.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	tok, err := h.deps.Tokens.Issue(h.deps.Tokens.NewClaim(user.ID, user.Email, h.now()))
	if err != nil {
		h.deps.Metrics.Logins.WithLabelValues("error").Inc()
		h.log.Error("auth.login.issue_token.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if ident := IdentityFrom(ctx); ident != nil {
		ident.Remember(user.ID.String())
	}

	h.deps.Metrics.Logins.WithLabelValues("success").Inc()
	h.auditLoginSuccess(ctx, ip, user.ID.String(), user.Email)
	writeJSON(w, http.StatusOK, loginResponse{
		User:  toUserResponse(user),
		Token: tok,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if ident := IdentityFrom(ctx); ident != nil {
		if id, ok := ident.ID(); ok {
			h.auditLogout(ctx, clientIP(r, h.cfg.TrustProxy), id)
		}
		ident.Forget()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	u, err := h.deps.Users.User(r.Context(), id)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(u)})
}
