package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u User) error {
	const op = "identity.memory.CreateUser"
	if err := ctx.Err(); err != nil {
		return err
	}

	norm := NormalizeEmail(u.Email)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return ConflictError{Op: op, Field: "id"}
	}
	if _, ok := s.byEmail[norm]; ok {
		return ConflictError{Op: op, Field: "email"}
	}
	s.byID[u.ID] = u
	s.byEmail[norm] = u.ID
	return nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, NotFoundError{Op: "identity.memory.FindByEmail"}
	}
	return s.byID[id], nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.memory.FindByID"}
	}
	return u, nil
}
