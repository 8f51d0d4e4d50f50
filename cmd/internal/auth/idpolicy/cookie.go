package idpolicy

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const identityKey = "id"

// CookiePolicy keeps the identity inside a signed and encrypted cookie.
type CookiePolicy struct {
	name  string
	store *sessions.CookieStore
}

func NewCookiePolicy(cfg Config) (*CookiePolicy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	keys, err := deriveKeys(cfg.SessionKey, "identity-cookie")
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore(keys.hash, keys.block)
	maxAge, secure, sameSite := cookieOptions(cfg)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: sameSite,
	}
	// Also bounds the timestamp embedded in the cookie value.
	store.MaxAge(maxAge)

	return &CookiePolicy{name: "id-" + cfg.SessionName, store: store}, nil
}

// Name is the cookie name.
func (p *CookiePolicy) Name() string { return p.name }

func (p *CookiePolicy) Extract(r *http.Request) (string, bool, error) {
	sess, err := p.store.New(r, p.name)
	if err != nil || sess.IsNew {
		return "", false, nil
	}
	id, _ := sess.Values[identityKey].(string)
	if id == "" {
		return "", false, nil
	}
	return id, true, nil
}

func (p *CookiePolicy) Commit(w http.ResponseWriter, r *http.Request, id string, changed bool) error {
	if !changed {
		return nil
	}

	// A cookie that fails to decode is replaced, so the decode error is dropped.
	sess, _ := p.store.New(r, p.name)
	if id == "" {
		sess.Values = map[interface{}]interface{}{}
		sess.Options.MaxAge = -1
	} else {
		sess.Values = map[interface{}]interface{}{identityKey: id}
	}
	if err := p.store.Save(r, w, sess); err != nil {
		return commitErr("cookie commit", err)
	}
	return nil
}
