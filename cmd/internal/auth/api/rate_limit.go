package authapi

import (
	"log/slog"
	"net/http"
	"time"

	"shelf/cmd/internal/auth/ratelimit"
	"shelf/cmd/internal/auth/session"
)

// RateLimitMiddleware admits each request against the key identity+client IP.
// Reject answers 429 with Retry-After; a counter failure answers 503.
func RateLimitMiddleware(l *ratelimit.Limiter, trustProxy bool, m *Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if ident := IdentityFrom(r.Context()); ident != nil {
				id, _ = ident.ID()
			}
			remote := clientIP(r, trustProxy)

			res, err := l.Admit(r.Context(), ratelimit.Key(id, remote))
			if err != nil {
				log.Error("ratelimit.admit.fail", "err", err, "timeout", session.IsTimeout(err), "remote", remote)
				writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
				return
			}
			if m != nil {
				m.RateLimit.WithLabelValues(res.Decision.String()).Inc()
			}
			if res.Decision == ratelimit.Reject {
				log.Warn("ratelimit.reject", "remote", remote, "count", res.Count, "reset_at", res.ResetAt)
				writeRateLimited(w, res.RetryAfter(time.Now()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
