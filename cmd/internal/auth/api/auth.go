package authapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shelf/cmd/security/token"
)

// Principal is the authenticated caller of a protected route.
type Principal struct {
	UserID string
	Email  string // set for token callers only
	Source string // "identity" or "token"
}

type principalKey struct{}

// PrincipalFrom returns the caller set by RequireAuth.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(tok string, now time.Time) (token.Claim, error)
}

// RequireAuth admits callers with a persisted identity or a valid bearer
// token and answers 401 to everyone else. Why a token was refused is logged,
// never sent to the client.
func RequireAuth(tokens TokenVerifier, m *Metrics, log *slog.Logger, now func() time.Time) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ident := IdentityFrom(r.Context()); ident != nil {
				if id, ok := ident.ID(); ok {
					p := Principal{UserID: id, Source: "identity"}
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
					return
				}
			}

			raw := bearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			claim, err := tokens.Verify(raw, now())
			reason := token.Reason(err)
			if m != nil {
				m.TokenVerifies.WithLabelValues(reason).Inc()
			}
			if err != nil {
				log.Info("auth.token.reject", "reason", reason, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			p := Principal{UserID: claim.UserID.String(), Email: claim.Email, Source: "token"}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}
