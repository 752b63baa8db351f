package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureentry/dashboard/internal/auth"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	a, err := auth.NewAuthenticator(auth.NewStaticCredentials(auth.DemoCredentials()))
	require.NoError(t, err)
	c, err := NewController(a)
	require.NoError(t, err)
	return c
}

func signedIn(t *testing.T, c *Controller) auth.Session {
	t.Helper()
	sess, err := c.Login(auth.Session{ID: "s1"}, "admin", "admin123")
	require.NoError(t, err)
	return sess
}

func TestNewControllerRequiresAuthenticator(t *testing.T) {
	_, err := NewController(nil)
	require.Error(t, err)
}

func TestControllerLoginSuccess(t *testing.T) {
	c := newController(t)

	sess := signedIn(t, c)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, auth.State{Authenticated: true, UserID: "admin"}, sess.State)
	assert.Equal(t, ViewDashboard, Route(sess.State))
}

func TestControllerLoginFailures(t *testing.T) {
	c := newController(t)

	sess, err := c.Login(auth.Session{ID: "s1"}, "admin", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredential)
	assert.False(t, sess.State.Authenticated)
	assert.Equal(t, "Invalid User ID or Access Key", sess.State.LoginError)
	assert.Equal(t, ViewLogin, Route(sess.State))

	sess, err = c.Login(sess, "", "")
	require.ErrorIs(t, err, auth.ErrMissingInput)
	assert.Equal(t, "Please enter both User ID and Access Key", sess.State.LoginError)
	assert.Equal(t, ViewLogin, Route(sess.State))
}

func TestControllerLogout(t *testing.T) {
	c := newController(t)
	sess := signedIn(t, c)

	sess = c.Logout(sess)
	assert.Equal(t, auth.State{}, sess.State)
	assert.Equal(t, ViewLogin, Route(sess.State))
	require.Len(t, sess.Flashes, 1)
	assert.Equal(t, auth.Flash{Kind: auth.FlashSuccess, Text: MsgLoggedOut}, sess.Flashes[0])

	again := c.Logout(auth.Session{ID: "anon"})
	assert.Empty(t, again.Flashes, "logging out an anonymous session is a no-op")
}

func TestControllerSubmitSuggestion(t *testing.T) {
	c := newController(t)
	sess := signedIn(t, c)

	sess, err := c.SubmitSuggestion(sess, Suggestion{Title: "", Description: "text", Category: CategoryCompliance, Priority: PriorityHigh})
	require.ErrorIs(t, err, ErrMissingRequiredField)
	require.Len(t, sess.Flashes, 1)
	assert.Equal(t, auth.FlashError, sess.Flashes[0].Kind)
	assert.Equal(t, MsgMissingRequiredField, sess.Flashes[0].Text)
	assert.True(t, sess.State.Authenticated)

	sess.TakeFlashes()
	sess, err = c.SubmitSuggestion(sess, Suggestion{Title: "Dual control", Description: "Require two approvers"})
	require.NoError(t, err)
	require.Len(t, sess.Flashes, 1)
	assert.Equal(t, auth.Flash{Kind: auth.FlashSuccess, Text: "Suggestion 'Dual control' submitted successfully!"}, sess.Flashes[0])
}

func TestControllerActivityActions(t *testing.T) {
	c := newController(t)
	sess := signedIn(t, c)

	sess, err := c.ApplyFilters(sess, ActivityFilter{Type: LogTypeLogin, User: "demo"})
	require.NoError(t, err)
	sess, err = c.ExportLogs(sess)
	require.NoError(t, err)

	assert.Equal(t, []auth.Flash{
		{Kind: auth.FlashInfo, Text: MsgFiltersApplied},
		{Kind: auth.FlashInfo, Text: MsgExportPending},
	}, sess.Flashes)
}

func TestControllerRejectsAnonymousDashboardActions(t *testing.T) {
	c := newController(t)
	anon := auth.Session{ID: "anon"}

	_, err := c.SubmitSuggestion(anon, Suggestion{Title: "t", Description: "d"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.ApplyFilters(anon, ActivityFilter{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
	out, err := c.ExportLogs(anon)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, out.Flashes)
}
