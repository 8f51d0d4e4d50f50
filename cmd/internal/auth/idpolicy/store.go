package idpolicy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"shelf/cmd/identity/ids"
	"shelf/cmd/internal/auth/session"
)

// UserIDField is the SessionRecord field holding the identity.
const UserIDField = "user_id"

// SessionPolicy keeps only a session id in the cookie; the identity lives in
// the shared store under UserIDField.
type SessionPolicy struct {
	name     string
	ttl      time.Duration
	maxAge   int
	secure   bool
	sameSite http.SameSite

	codec *securecookie.SecureCookie
	store session.Store
	now   func() time.Time
}

func NewSessionPolicy(cfg Config, store session.Store) (*SessionPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: session policy requires a store", ErrConfig)
	}
	keys, err := deriveKeys(cfg.SessionKey, "session-id-cookie")
	if err != nil {
		return nil, err
	}

	maxAge, secure, sameSite := cookieOptions(cfg)
	codec := securecookie.New(keys.hash, keys.block)
	codec.MaxAge(maxAge)

	return &SessionPolicy{
		name:     cfg.SessionName,
		ttl:      cfg.TTL(),
		maxAge:   maxAge,
		secure:   secure,
		sameSite: sameSite,
		codec:    codec,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name is the cookie name.
func (p *SessionPolicy) Name() string { return p.name }

func (p *SessionPolicy) Extract(r *http.Request) (string, bool, error) {
	sid, ok := p.sessionID(r)
	if !ok {
		return "", false, nil
	}
	id, ok, err := p.store.Get(r.Context(), sid, UserIDField)
	if err != nil {
		return "", false, fmt.Errorf("idpolicy extract: %w", err)
	}
	if !ok || id == "" {
		return "", false, nil
	}
	return id, true, nil
}

// Commit mints a fresh session id for every new identity and clears the
// previous record, so an id seen before login never becomes authenticated.
func (p *SessionPolicy) Commit(w http.ResponseWriter, r *http.Request, id string, changed bool) error {
	if !changed {
		return nil
	}
	ctx := r.Context()

	if prev, ok := p.sessionID(r); ok {
		if err := p.store.Clear(ctx, prev); err != nil {
			return commitErr("clear", err)
		}
	}

	if id == "" {
		http.SetCookie(w, p.cookie("", -1))
		return nil
	}

	sid, err := ids.NewSessionID(p.now())
	if err != nil {
		return commitErr("session id", err)
	}
	if err := p.store.Set(ctx, sid, UserIDField, id); err != nil {
		return commitErr("set", err)
	}
	if err := p.store.Renew(ctx, sid, p.ttl); err != nil {
		return commitErr("renew", err)
	}

	encoded, err := p.codec.Encode(p.name, sid)
	if err != nil {
		return commitErr("encode", err)
	}
	http.SetCookie(w, p.cookie(encoded, p.maxAge))
	return nil
}

// sessionID decodes the session-id cookie. Missing, tampered and expired
// cookies all report ok=false.
func (p *SessionPolicy) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(p.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	var sid string
	if err := p.codec.Decode(p.name, c.Value, &sid); err != nil {
		return "", false
	}
	return ids.ParseSessionID(sid)
}

func (p *SessionPolicy) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     p.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: p.sameSite,
	}
}
