package authflow

import (
	"context"
	"sync"
)

// VerifierKey is the fixed slot for the PKCE verifier. One login attempt is
// supported at a time, so a new attempt overwrites the previous one.
const VerifierKey = "pkce_verifier"

// VerifierStore holds PKCE verifiers between the login redirect and the
// callback.
type VerifierStore interface {
	Put(ctx context.Context, key, verifier string) error
	// Take returns and deletes the verifier. ok is false when none is stored.
	Take(ctx context.Context, key string) (verifier string, ok bool, err error)
	Delete(ctx context.Context, key string) error
}

// MemoryVerifiers is a process-local VerifierStore.
type MemoryVerifiers struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryVerifiers() *MemoryVerifiers {
	return &MemoryVerifiers{m: make(map[string]string)}
}

func (s *MemoryVerifiers) Put(_ context.Context, key, verifier string) error {
	s.mu.Lock()
	s.m[key] = verifier
	s.mu.Unlock()
	return nil
}

func (s *MemoryVerifiers) Take(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.m[key]
	delete(s.m, key)
	return v, ok, nil
}

func (s *MemoryVerifiers) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}
