package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/store"
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// account is a registered user as persisted in the accounts snapshot.
type account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"password_hash"`
}

// LocalAuthenticator verifies credentials against accounts held in
// the persistent store. It fills the "real backend" slot of the
// Authenticator capability: signup registers, login actually checks
// the password, and mismatches fail instead of fabricating a user.
type LocalAuthenticator struct {
	mu       sync.Mutex
	tokens   *TokenService
	store    store.Store
	accounts []account
}

func NewLocalAuthenticator(tokens *TokenService, st store.Store) (*LocalAuthenticator, error) {
	a := &LocalAuthenticator{tokens: tokens, store: st}
	if _, err := store.LoadJSON(st, store.KeyAccounts, &a.accounts); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *LocalAuthenticator) Login(ctx context.Context, email, password string) (*Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, acc := range a.accounts {
		if !strings.EqualFold(acc.Email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return a.identityFor(acc)
	}
	return nil, ErrInvalidCredentials
}

func (a *LocalAuthenticator) Signup(ctx context.Context, email, password, firstName, lastName string) (*Identity, error) {
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, acc := range a.accounts {
		if strings.EqualFold(acc.Email, email) {
			return nil, ErrEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := account{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	a.accounts = append(a.accounts, acc)
	if err := store.SaveJSON(a.store, store.KeyAccounts, a.accounts); err != nil {
		return nil, err
	}

	return a.identityFor(acc)
}

func (a *LocalAuthenticator) identityFor(acc account) (*Identity, error) {
	token, err := a.tokens.Issue(acc.ID, acc.Email)
	if err != nil {
		return nil, err
	}
	return &Identity{
		ID:        acc.ID,
		Email:     acc.Email,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Token:     token,
	}, nil
}
