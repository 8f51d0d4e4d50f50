package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shelf/cmd/security/password"
)

// Service registers users and checks credentials.
type Service struct {
	store  Store
	hasher *password.Pool
	policy password.Policy
	now    func() time.Time

	// dummy is a real hash compared against when the email is unknown,
	// so a miss costs one derivation like a hit does.
	dummyOnce sync.Once
	dummySalt string
	dummyHash string
	dummyErr  error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, hasher *password.Pool, policy password.Policy, opts ...ServiceOption) (*Service, error) {
	if store == nil || hasher == nil {
		return nil, errors.New("identity: nil store or hasher")
	}
	s := &Service{
		store:  store,
		hasher: hasher,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Register creates a user with a fresh per-user salt.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	const op = "identity.Register"

	if err := ValidateEmail(in.Email); err != nil {
		return User{}, err
	}
	if err := s.policy.Validate(in.Password); err != nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error()}
	}

	salt1, err := password.NewSalt(password.DefaultSaltLength)
	if err != nil {
		return User{}, fmt.Errorf("%s: salt: %w", op, err)
	}
	hash, err := s.hasher.Hash(ctx, in.Password, salt1)
	if err != nil {
		return User{}, fmt.Errorf("%s: hash: %w", op, err)
	}

	now := s.now()
	u := User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Salt1:        salt1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns the user whose email and password match.
//
// An unknown email and a wrong password both return ErrInvalidCredentials.
// Store and hashing failures are returned as themselves.
func (s *Service) Authenticate(ctx context.Context, email, pw string) (User, error) {
	const op = "identity.Authenticate"

	u, err := s.store.FindByEmail(ctx, email)
	if IsNotFound(err) {
		if err := s.verifyDummy(ctx, pw); err != nil {
			return User{}, err
		}
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}
	if err != nil {
		return User{}, err
	}

	ok, err := s.hasher.Verify(ctx, pw, u.Salt1, u.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("%s: verify: %w", op, err)
	}
	if !ok {
		return User{}, OpError{Op: op, Kind: ErrInvalidCredentials}
	}
	return u, nil
}

// User returns the user with the given id.
func (s *Service) User(ctx context.Context, id uuid.UUID) (User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) verifyDummy(ctx context.Context, pw string) error {
	s.dummyOnce.Do(func() {
		salt, err := password.NewSalt(password.DefaultSaltLength)
		if err != nil {
			s.dummyErr = err
			return
		}
		hash, err := s.hasher.Hash(context.Background(), "shelf-dummy-password", salt)
		if err != nil {
			s.dummyErr = err
			return
		}
		s.dummySalt, s.dummyHash = salt, hash
	})
	if s.dummyErr != nil {
		return fmt.Errorf("identity: dummy hash: %w", s.dummyErr)
	}
	_, err := s.hasher.Verify(ctx, pw, s.dummySalt, s.dummyHash)
	return err
}
