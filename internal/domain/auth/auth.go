// Package auth owns the active session identity. Credential
// verification is a pluggable Authenticator; the manager holds the
// single identity slot and persists it so a restart keeps the user
// logged in.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// Identity is the authenticated user for the current session.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Token     string `json:"token"`
}

// Authenticator verifies credentials and produces an Identity. The
// mock implementation always succeeds; a real backend client slots in
// here instead, selected at construction time.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Identity, error)
	Signup(ctx context.Context, email, password, firstName, lastName string) (*Identity, error)
}

// Manager holds at most one active Identity. Overlapping login/signup
// calls are not serialized against each other: both complete, and the
// later completion overwrites the earlier one. Installation itself is
// mutex-guarded so the slot is never torn.
type Manager struct {
	mu            sync.RWMutex
	identity      *Identity
	authenticator Authenticator
	store         store.Store
	log           logrus.FieldLogger
}

// NewManager rehydrates the persisted identity, if any.
func NewManager(a Authenticator, st store.Store, log logrus.FieldLogger) *Manager {
	m := &Manager{authenticator: a, store: st, log: log}
	var id Identity
	ok, err := store.LoadJSON(st, store.KeyUser, &id)
	if err != nil {
		log.WithError(err).Warn("auth: failed to rehydrate identity")
	} else if ok {
		m.identity = &id
	}
	return m
}

// Login authenticates and installs the resulting identity.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	id, err := m.authenticator.Login(ctx, email, password)
	if err != nil {
		return err
	}
	m.install(id)
	return nil
}

// Signup registers, authenticates and installs the resulting identity.
func (m *Manager) Signup(ctx context.Context, email, password, firstName, lastName string) error {
	id, err := m.authenticator.Signup(ctx, email, password, firstName, lastName)
	if err != nil {
		return err
	}
	m.install(id)
	return nil
}

// Logout clears the active identity synchronously.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = nil
	if err := m.store.Delete(store.KeyUser); err != nil {
		m.log.WithError(err).Error("auth: failed to delete persisted identity")
	}
}

// Current returns the active identity, if any.
func (m *Manager) Current() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

func (m *Manager) install(id *Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = id
	if err := store.SaveJSON(m.store, store.KeyUser, id); err != nil {
		m.log.WithError(err).Error("auth: failed to persist identity")
	}
}
