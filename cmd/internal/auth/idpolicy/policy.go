// Package idpolicy decides where a caller's identity lives between requests:
// inside a tamper-evident cookie, or in the shared session store behind an
// opaque session-id cookie.
package idpolicy

import (
	"fmt"
	"net/http"
	"strings"

	"shelf/cmd/internal/auth/session"
)

// Policy extracts and commits the identity carried by a request.
//
// An empty id means "no identity". Extract never fabricates one from a
// missing, tampered or expired cookie. Store failures are returned as
// errors and must not be read as anonymous.
type Policy interface {
	Extract(r *http.Request) (id string, ok bool, err error)

	// Commit writes id to w when changed is true. id == "" forgets the identity.
	Commit(w http.ResponseWriter, r *http.Request, id string, changed bool) error
}

// New builds the variant named by cfg.Variant. store is required by the
// session variant only.
func New(cfg Config, store session.Store) (Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Variant)) {
	case VariantSession:
		return NewSessionPolicy(cfg, store)
	default:
		return NewCookiePolicy(cfg)
	}
}

// cookieOptions is shared by both variants.
func cookieOptions(cfg Config) (maxAge int, secure bool, sameSite http.SameSite) {
	return cfg.MaxAge(), cfg.Secure, ParseSameSite(cfg.SameSite)
}

func commitErr(op string, err error) error {
	return fmt.Errorf("idpolicy %s: %w", op, err)
}
