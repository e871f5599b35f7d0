package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockAuthenticator accepts any well-formed credentials after a
// simulated network delay and fabricates an identity. It stands in
// for a real credential-verification backend.
type MockAuthenticator struct {
	tokens *TokenService
	delay  time.Duration
}

func NewMockAuthenticator(tokens *TokenService, delay time.Duration) *MockAuthenticator {
	return &MockAuthenticator{tokens: tokens, delay: delay}
}

func (a *MockAuthenticator) Login(ctx context.Context, email, password string) (*Identity, error) {
	if err := a.sleep(ctx); err != nil {
		return nil, err
	}
	return a.fabricate(email, "John", "Doe")
}

func (a *MockAuthenticator) Signup(ctx context.Context, email, password, firstName, lastName string) (*Identity, error) {
	if err := a.sleep(ctx); err != nil {
		return nil, err
	}
	return a.fabricate(email, firstName, lastName)
}

func (a *MockAuthenticator) fabricate(email, firstName, lastName string) (*Identity, error) {
	id := uuid.New().String()
	token, err := a.tokens.Issue(id, email)
	if err != nil {
		return nil, err
	}
	return &Identity{
		ID:        id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Token:     token,
	}, nil
}

func (a *MockAuthenticator) sleep(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
