package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	ErrMissingInput      = errors.New("missing user id or access key")
	ErrInvalidCredential = errors.New("invalid user id or access key")
)

// Messages shown on the login view.
const (
	MsgMissingInput      = "Please enter both User ID and Access Key"
	MsgInvalidCredential = "Invalid User ID or Access Key"
)

// Authenticator drives the Anonymous/Authenticated state machine. It holds
// no per-client state: every transition takes a State and returns the next.
type Authenticator struct {
	credentials CredentialLookup
}

func NewAuthenticator(credentials CredentialLookup) (*Authenticator, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential lookup is required")
	}
	return &Authenticator{credentials: credentials}, nil
}

// Authenticate reports whether secret is the secret stored for userID.
func (a *Authenticator) Authenticate(userID, secret string) bool {
	return a.Verify(userID, secret) == nil
}

// Verify is Authenticate with the reason. It returns ErrInvalidCredential on
// an unknown identifier or a mismatch, and a wrapped error when the lookup
// backend fails.
func (a *Authenticator) Verify(userID, secret string) error {
	stored, err := a.credentials.Lookup(userID)
	if err != nil {
		if errors.Is(err, ErrUnknownIdentifier) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("lookup credential: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// Login applies a login submission to st. On failure the returned state is
// still anonymous and carries the message for the login view; the error is
// ErrMissingInput, ErrInvalidCredential, or a backend failure.
func (a *Authenticator) Login(st State, userID, secret string) (State, error) {
	if st.Authenticated {
		return st, nil
	}
	if userID == "" || secret == "" {
		return State{LoginError: MsgMissingInput}, ErrMissingInput
	}
	if err := a.Verify(userID, secret); err != nil {
		return State{LoginError: MsgInvalidCredential}, err
	}
	return State{Authenticated: true, UserID: userID}, nil
}

// Logout returns the anonymous state.
func (a *Authenticator) Logout(State) State {
	return State{}
}
