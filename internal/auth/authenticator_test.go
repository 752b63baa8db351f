package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLookup struct{ err error }

func (f failingLookup) Lookup(string) (string, error) { return "", f.err }

func newDemoAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(NewStaticCredentials(DemoCredentials()))
	require.NoError(t, err)
	return a
}

func TestNewAuthenticatorRequiresLookup(t *testing.T) {
	_, err := NewAuthenticator(nil)
	assert.Error(t, err)
}

func TestAuthenticateAcceptsEveryTableEntry(t *testing.T) {
	a := newDemoAuthenticator(t)
	for _, c := range DemoCredentials() {
		assert.True(t, a.Authenticate(c.UserID, c.AccessKey), "%s/%s", c.UserID, c.AccessKey)
	}
}

func TestAuthenticateRejectsUnknownIdentifiers(t *testing.T) {
	a := newDemoAuthenticator(t)
	for _, id := range []string{"", "root", "Admin", "admin ", " demo"} {
		for _, secret := range []string{"", "admin123", "demo123", "anything"} {
			assert.False(t, a.Authenticate(id, secret), "id %q secret %q", id, secret)
		}
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	a := newDemoAuthenticator(t)
	for _, c := range DemoCredentials() {
		for _, secret := range []string{"", "wrong", c.AccessKey + " ", "ADMIN123", c.AccessKey[:len(c.AccessKey)-1]} {
			if secret == c.AccessKey {
				continue
			}
			assert.False(t, a.Authenticate(c.UserID, secret), "id %q secret %q", c.UserID, secret)
		}
	}
}

func TestAuthenticateIsIdempotent(t *testing.T) {
	a := newDemoAuthenticator(t)
	cases := [][2]string{{"admin", "admin123"}, {"admin", "wrong"}, {"ghost", "x"}}
	for _, c := range cases {
		first := a.Authenticate(c[0], c[1])
		second := a.Authenticate(c[0], c[1])
		assert.Equal(t, first, second, "Authenticate(%q, %q)", c[0], c[1])
	}
}

func TestVerifyWrapsBackendErrors(t *testing.T) {
	backendErr := errors.New("connection refused")
	a, err := NewAuthenticator(failingLookup{err: backendErr})
	require.NoError(t, err)

	err = a.Verify("admin", "admin123")
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, ErrInvalidCredential, "backend failure must not look like a credential mismatch")
	assert.False(t, a.Authenticate("admin", "admin123"))
}

func TestLoginSuccess(t *testing.T) {
	a := newDemoAuthenticator(t)

	st, err := a.Login(State{}, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, State{Authenticated: true, UserID: "admin"}, st)
}

func TestLoginClearsPreviousError(t *testing.T) {
	a := newDemoAuthenticator(t)

	st, _ := a.Login(State{}, "admin", "wrong")
	st, err := a.Login(st, "demo", "demo123")
	require.NoError(t, err)
	assert.Equal(t, State{Authenticated: true, UserID: "demo"}, st)
}

func TestLoginInvalidCredential(t *testing.T) {
	a := newDemoAuthenticator(t)

	st, err := a.Login(State{}, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, State{LoginError: "Invalid User ID or Access Key"}, st)
}

func TestLoginMissingInput(t *testing.T) {
	a := newDemoAuthenticator(t)

	cases := [][2]string{{"", ""}, {"admin", ""}, {"", "admin123"}}
	for _, c := range cases {
		st, err := a.Login(State{}, c[0], c[1])
		assert.ErrorIs(t, err, ErrMissingInput, "Login(%q, %q)", c[0], c[1])
		assert.Equal(t, State{LoginError: "Please enter both User ID and Access Key"}, st, "Login(%q, %q)", c[0], c[1])
	}
}

func TestLoginWhitespaceIsNotEmpty(t *testing.T) {
	a := newDemoAuthenticator(t)

	st, err := a.Login(State{}, " ", " ")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, MsgInvalidCredential, st.LoginError)
}

func TestLoginBackendFailureShowsInvalidCredential(t *testing.T) {
	a, err := NewAuthenticator(failingLookup{err: errors.New("db down")})
	require.NoError(t, err)

	st, err := a.Login(State{}, "admin", "admin123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, State{LoginError: MsgInvalidCredential}, st)
}

func TestLoginWhileAuthenticatedKeepsState(t *testing.T) {
	a := newDemoAuthenticator(t)
	current := State{Authenticated: true, UserID: "auditor1"}

	st, err := a.Login(current, "admin", "wrong")
	require.NoError(t, err)
	assert.Equal(t, current, st)
}

func TestLogoutResetsState(t *testing.T) {
	a := newDemoAuthenticator(t)

	st, err := a.Login(State{}, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, State{}, a.Logout(st))
}
