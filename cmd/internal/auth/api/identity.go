package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"shelf/cmd/internal/auth/idpolicy"
)

// Identity is the per-request view of the caller's persisted identity.
// Handlers change it with Remember and Forget; the change is committed to
// the response before its first byte is written.
type Identity struct {
	mu      sync.Mutex
	id      string
	changed bool
}

// ID returns the current identity; ok is false when anonymous.
func (i *Identity) ID() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.id, i.id != ""
}

// Remember sets the identity for this and later requests.
func (i *Identity) Remember(id string) {
	i.mu.Lock()
	i.id, i.changed = id, true
	i.mu.Unlock()
}

// Forget clears the identity.
func (i *Identity) Forget() {
	i.mu.Lock()
	i.id, i.changed = "", true
	i.mu.Unlock()
}

func (i *Identity) snapshot() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.id, i.changed
}

type identityKey struct{}

// IdentityFrom returns the request's Identity, or nil outside IdentityMiddleware.
func IdentityFrom(ctx context.Context) *Identity {
	i, _ := ctx.Value(identityKey{}).(*Identity)
	return i
}

var errCommitFailed = errors.New("identity commit failed")

// IdentityMiddleware extracts the caller's identity through policy and
// commits changes made by the handler. A store failure on either side
// answers 503 instead of treating the caller as anonymous.
func IdentityMiddleware(policy idpolicy.Policy, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _, err := policy.Extract(r)
			if err != nil {
				log.Error("auth.identity.extract.fail", "err", err, "path", r.URL.Path)
				writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
				return
			}

			ident := &Identity{id: id}
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, ident))

			cw := &commitWriter{ResponseWriter: w, r: r, policy: policy, ident: ident, log: log}
			next.ServeHTTP(cw, r)
			cw.commit()
		})
	}
}

// commitWriter commits the identity once, right before the response starts.
type commitWriter struct {
	http.ResponseWriter
	r      *http.Request
	policy idpolicy.Policy
	ident  *Identity
	log    *slog.Logger

	done   bool
	failed bool
}

func (w *commitWriter) commit() bool {
	if w.done {
		return !w.failed
	}
	w.done = true

	id, changed := w.ident.snapshot()
	if err := w.policy.Commit(w.ResponseWriter, w.r, id, changed); err != nil {
		w.failed = true
		w.log.Error("auth.identity.commit.fail", "err", err, "path", w.r.URL.Path)
		writeError(w.ResponseWriter, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
		return false
	}
	return true
}

func (w *commitWriter) WriteHeader(code int) {
	if w.commit() {
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *commitWriter) Write(p []byte) (int, error) {
	if !w.commit() {
		return 0, errCommitFailed
	}
	return w.ResponseWriter.Write(p)
}

func (w *commitWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
