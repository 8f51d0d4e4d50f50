package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claim is the set of identity facts embedded in a token.
type Claim struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt int64
}

// Expired reports whether the claim is no longer valid at now.
func (c Claim) Expired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

// wireClaims is the JSON payload: {"user_id","email","exp"}.
type wireClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Service signs and verifies claims with a shared secret.
type Service struct {
	key    []byte
	ttl    time.Duration
	method *jwt.SigningMethodHMAC
}

// NewService validates cfg and returns an HS256 Service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		key:    []byte(cfg.Secret),
		ttl:    cfg.TTL(),
		method: jwt.SigningMethodHS256,
	}, nil
}

// NewClaim builds a claim expiring one configured lifetime after now.
func (s *Service) NewClaim(userID uuid.UUID, email string, now time.Time) Claim {
	return Claim{
		UserID:    userID,
		Email:     email,
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
}

// Issue serializes and signs c.
func (s *Service) Issue(c Claim) (string, error) {
	wc := wireClaims{
		UserID: c.UserID,
		Email:  c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, wc).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return signed, nil
}

// Verify authenticates tok and returns its claim as of now.
func (s *Service) Verify(tok string, now time.Time) (Claim, error) {
	dot := strings.LastIndexByte(tok, '.')
	if dot < 0 {
		return Claim{}, ErrMalformed
	}

	// Authenticate before decoding anything else.
	sig, err := base64.RawURLEncoding.Strict().DecodeString(tok[dot+1:])
	if err != nil {
		return Claim{}, ErrSignatureInvalid
	}
	if err := s.method.Verify(tok[:dot], sig, s.key); err != nil {
		return Claim{}, ErrSignatureInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var wc wireClaims
	_, err = parser.ParseWithClaims(tok, &wc, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claim{}, ErrExpired
	default:
		return Claim{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	c := Claim{
		UserID:    wc.UserID,
		Email:     wc.Email,
		ExpiresAt: wc.ExpiresAt.Unix(),
	}
	// The parser compares against exp at sub-second precision; keep the
	// boundary on whole seconds so t >= exp is always expired.
	if c.Expired(now) {
		return Claim{}, ErrExpired
	}
	return c, nil
}
