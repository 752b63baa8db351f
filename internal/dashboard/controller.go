package dashboard

import (
	"errors"
	"fmt"

	"secureentry/dashboard/internal/auth"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Notices emitted by dashboard actions.
const (
	MsgLoggedOut       = "Logged out successfully!"
	MsgFiltersApplied  = "Filters applied successfully"
	MsgExportPending   = "Export functionality would be implemented here"
	MsgTerminated      = "Application terminated by user"
	msgSuggestionSaved = "Suggestion '%s' submitted successfully!"
)

type Authenticator interface {
	Login(st auth.State, userID, secret string) (auth.State, error)
	Logout(st auth.State) auth.State
}

// Controller applies user actions to a session record. Every action takes
// the current session and returns the next one; the caller persists it and
// re-renders from the result.
type Controller struct {
	auth Authenticator
}

func NewController(authenticator Authenticator) (*Controller, error) {
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	return &Controller{auth: authenticator}, nil
}

// Login returns the session with the login transition applied. The error
// is informational: the returned session is always the one to keep.
func (c *Controller) Login(sess auth.Session, userID, secret string) (auth.Session, error) {
	st, err := c.auth.Login(sess.State, userID, secret)
	sess.State = st
	return sess, err
}

func (c *Controller) Logout(sess auth.Session) auth.Session {
	if !sess.State.Authenticated {
		return sess
	}
	sess.State = c.auth.Logout(sess.State)
	sess.AddFlash(auth.FlashSuccess, MsgLoggedOut)
	return sess
}

// SubmitSuggestion validates s and acknowledges it. Nothing is stored.
func (c *Controller) SubmitSuggestion(sess auth.Session, s Suggestion) (auth.Session, error) {
	if !sess.State.Authenticated {
		return sess, ErrNotAuthenticated
	}
	if err := s.Validate(); err != nil {
		sess.AddFlash(auth.FlashError, MsgMissingRequiredField)
		return sess, err
	}
	sess.AddFlash(auth.FlashSuccess, fmt.Sprintf(msgSuggestionSaved, s.Title))
	return sess, nil
}

func (c *Controller) ApplyFilters(sess auth.Session, _ ActivityFilter) (auth.Session, error) {
	if !sess.State.Authenticated {
		return sess, ErrNotAuthenticated
	}
	sess.AddFlash(auth.FlashInfo, MsgFiltersApplied)
	return sess, nil
}

func (c *Controller) ExportLogs(sess auth.Session) (auth.Session, error) {
	if !sess.State.Authenticated {
		return sess, ErrNotAuthenticated
	}
	sess.AddFlash(auth.FlashInfo, MsgExportPending)
	return sess, nil
}
