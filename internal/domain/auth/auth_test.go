package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager() (*Manager, *store.MemoryStore) {
	st := store.NewMemoryStore()
	tokens := NewTokenService(testSecret, time.Hour)
	authenticator := NewMockAuthenticator(tokens, 0) // no simulated delay in tests
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewManager(authenticator, st, log), st
}

// ============================================
// Manager Tests
// ============================================

func TestManager_Login(t *testing.T) {
	m, _ := newTestManager()

	require.False(t, m.IsAuthenticated())

	err := m.Login(context.Background(), "jane@example.com", "whatever")
	require.NoError(t, err)

	id, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, "John", id.FirstName)
	assert.Equal(t, "Doe", id.LastName)
	assert.NotEmpty(t, id.ID)
	assert.NotEmpty(t, id.Token)
	assert.True(t, m.IsAuthenticated())
}

func TestManager_Signup(t *testing.T) {
	m, _ := newTestManager()

	err := m.Signup(context.Background(), "jane@example.com", "whatever", "Jane", "Roe")
	require.NoError(t, err)

	id, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "Jane", id.FirstName)
	assert.Equal(t, "Roe", id.LastName)
}

func TestManager_Logout(t *testing.T) {
	m, st := newTestManager()
	require.NoError(t, m.Login(context.Background(), "jane@example.com", "pw"))

	m.Logout()

	assert.False(t, m.IsAuthenticated())
	_, ok, err := st.Get(store.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok, "persisted identity removed on logout")
}

func TestManager_SingleIdentitySlot(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "first@example.com", "pw"))
	require.NoError(t, m.Login(ctx, "second@example.com", "pw"))

	// The later completion owns the slot.
	id, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "second@example.com", id.Email)
}

func TestManager_RehydratesIdentity(t *testing.T) {
	m, st := newTestManager()
	require.NoError(t, m.Login(context.Background(), "jane@example.com", "pw"))
	want, _ := m.Current()

	tokens := NewTokenService(testSecret, time.Hour)
	log := logrus.New()
	log.SetOutput(io.Discard)
	reloaded := NewManager(NewMockAuthenticator(tokens, 0), st, log)

	got, ok := reloaded.Current()
	require.True(t, ok, "reload keeps the user logged in")
	assert.Equal(t, want, got)
}

// ============================================
// MockAuthenticator Tests
// ============================================

func TestMockAuthenticator_AlwaysSucceeds(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	a := NewMockAuthenticator(tokens, 0)

	id, err := a.Login(context.Background(), "anyone@example.com", "any password")

	require.NoError(t, err)
	assert.Equal(t, "anyone@example.com", id.Email)
}

func TestMockAuthenticator_UniqueIdentities(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	a := NewMockAuthenticator(tokens, 0)
	ctx := context.Background()

	first, err := a.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	second, err := a.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestMockAuthenticator_DelayRespectsContext(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	a := NewMockAuthenticator(tokens, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := a.Login(ctx, "a@example.com", "pw")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ============================================
// LocalAuthenticator Tests
// ============================================

func newLocalAuthenticator(t *testing.T, st store.Store) *LocalAuthenticator {
	t.Helper()
	tokens := NewTokenService(testSecret, time.Hour)
	a, err := NewLocalAuthenticator(tokens, st)
	require.NoError(t, err)
	return a
}

func TestLocalAuthenticator_SignupThenLogin(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)
	ctx := context.Background()

	created, err := a.Signup(ctx, "jane@example.com", "long enough", "Jane", "Roe")
	require.NoError(t, err)

	id, err := a.Login(ctx, "jane@example.com", "long enough")
	require.NoError(t, err)
	assert.Equal(t, created.ID, id.ID)
	assert.Equal(t, "Jane", id.FirstName)
}

func TestLocalAuthenticator_WrongPassword(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)
	ctx := context.Background()

	_, err := a.Signup(ctx, "jane@example.com", "long enough", "Jane", "Roe")
	require.NoError(t, err)

	_, err = a.Login(ctx, "jane@example.com", "not the password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalAuthenticator_UnknownEmail(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)

	_, err := a.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalAuthenticator_DuplicateEmail(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)
	ctx := context.Background()

	_, err := a.Signup(ctx, "jane@example.com", "long enough", "Jane", "Roe")
	require.NoError(t, err)

	_, err = a.Signup(ctx, "JANE@example.com", "long enough", "Jane", "Roe")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLocalAuthenticator_ShortPassword(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)

	_, err := a.Signup(context.Background(), "jane@example.com", "short", "Jane", "Roe")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLocalAuthenticator_AccountsSurviveRestart(t *testing.T) {
	st := store.NewMemoryStore()
	a := newLocalAuthenticator(t, st)
	ctx := context.Background()

	_, err := a.Signup(ctx, "jane@example.com", "long enough", "Jane", "Roe")
	require.NoError(t, err)

	reloaded := newLocalAuthenticator(t, st)
	_, err = reloaded.Login(ctx, "jane@example.com", "long enough")
	assert.NoError(t, err)
}
