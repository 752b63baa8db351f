package httpserver

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"secureentry/dashboard/internal/auth"
	"secureentry/dashboard/internal/dashboard"
)

type pages struct {
	deps Deps
}

func registerPageHandlers(r *mux.Router, p *pages) {
	r.HandleFunc("/", p.index).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/login", p.login).Methods(http.MethodPost)
	r.HandleFunc("/exit", p.exit).Methods(http.MethodPost)
	r.HandleFunc("/logout", p.logout).Methods(http.MethodPost)
	r.HandleFunc("/suggestions", p.submitSuggestion).Methods(http.MethodPost)
	r.HandleFunc("/activity/filters", p.applyFilters).Methods(http.MethodPost)
	r.HandleFunc("/activity/export", p.exportLogs).Methods(http.MethodPost)
}

// index renders the view for the current session state and consumes any
// pending notices. HEAD renders the same page without touching the session.
func (p *pages) index(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	var flashes []auth.Flash
	if r.Method != http.MethodHead {
		flashes = sess.TakeFlashes()
		if !p.commit(w, r, sess) {
			return
		}
	}

	var buf bytes.Buffer
	tab := dashboard.ParseTab(r.URL.Query().Get("tab"))
	if err := p.deps.Views.Render(&buf, sess.State, flashes, tab); err != nil {
		p.fail(w, r, "render view failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (p *pages) login(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	next, err := p.deps.Actions.Login(sess, r.PostFormValue("user_id"), r.PostFormValue("access_key"))
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingInput), errors.Is(err, auth.ErrInvalidCredential):
	default:
		p.log(r).Error("credential lookup failed", "error", err)
	}
	if next.State.Authenticated && !sess.State.Authenticated {
		next, err = p.deps.Sessions.Rotate(next)
		if err != nil {
			p.fail(w, r, "rotate session failed", err)
			return
		}
		p.log(r).Info("login succeeded", "user_id", next.State.UserID)
	}
	p.redirect(w, r, next, "/")
}

// exit halts the request. The session is left untouched. Stopping the
// process additionally requires the request to prove it came from this site.
func (p *pages) exit(w http.ResponseWriter, r *http.Request) {
	shutdown := p.deps.Shutdown != nil
	if shutdown && !sameOrigin(r, true) {
		p.log(r).Warn("exit rejected: origin not verified", "origin", r.Header.Get("Origin"))
		writeError(w, http.StatusForbidden, "cross-origin request rejected")
		return
	}
	sess, ok := p.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := p.deps.Views.RenderHalted(&buf); err != nil {
		p.fail(w, r, "render halted page failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	p.log(r).Warn("application terminated by user", "user_id", sess.State.UserID)
	if shutdown {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		p.deps.Shutdown()
	}
}

func (p *pages) logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	if sess.State.Authenticated {
		p.log(r).Info("logout", "user_id", sess.State.UserID)
	}
	p.redirect(w, r, p.deps.Actions.Logout(sess), "/")
}

func (p *pages) submitSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	category, err := dashboard.ParseCategory(r.PostFormValue("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	priority, err := dashboard.ParsePriority(r.PostFormValue("priority"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid priority")
		return
	}

	next, err := p.deps.Actions.SubmitSuggestion(sess, dashboard.Suggestion{
		Title:       r.PostFormValue("title"),
		Category:    category,
		Priority:    priority,
		Description: r.PostFormValue("description"),
	})
	if err != nil && !errors.Is(err, dashboard.ErrMissingRequiredField) && !errors.Is(err, dashboard.ErrNotAuthenticated) {
		p.fail(w, r, "submit suggestion failed", err)
		return
	}
	p.redirect(w, r, next, "/")
}

func (p *pages) applyFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	filter, err := dashboard.ParseActivityFilter(
		r.PostFormValue("log_type"),
		r.PostFormValue("date"),
		r.PostFormValue("user"),
		time.Now(),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity filter")
		return
	}

	next, err := p.deps.Actions.ApplyFilters(sess, filter)
	if err != nil && !errors.Is(err, dashboard.ErrNotAuthenticated) {
		p.fail(w, r, "apply filters failed", err)
		return
	}
	p.redirect(w, r, next, "/?tab="+string(dashboard.TabActivity))
}

func (p *pages) exportLogs(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(w, r)
	if !ok {
		return
	}
	next, err := p.deps.Actions.ExportLogs(sess)
	if err != nil && !errors.Is(err, dashboard.ErrNotAuthenticated) {
		p.fail(w, r, "export logs failed", err)
		return
	}
	p.redirect(w, r, next, "/?tab="+string(dashboard.TabActivity))
}

func (p *pages) session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	if p.deps.Sessions == nil || p.deps.Actions == nil || p.deps.Views == nil {
		writeError(w, http.StatusServiceUnavailable, "dashboard unavailable")
		return auth.Session{}, false
	}
	var id string
	if c, err := r.Cookie(p.deps.Cookie.Name); err == nil {
		id = c.Value
	}
	sess, err := p.deps.Sessions.Load(id)
	if err != nil {
		p.fail(w, r, "load session failed", err)
		return auth.Session{}, false
	}
	return sess, true
}

// commit stores sess and refreshes the session cookie. A session holding
// nothing beyond the anonymous defaults is not stored: any record left under
// its id is removed and the cookie is cleared.
func (p *pages) commit(w http.ResponseWriter, r *http.Request, sess auth.Session) bool {
	if sess.Empty() {
		if _, err := r.Cookie(p.deps.Cookie.Name); err != nil {
			return true
		}
		if err := p.deps.Sessions.Destroy(sess.ID); err != nil {
			p.fail(w, r, "discard session failed", err)
			return false
		}
		p.setCookie(w, "", -1)
		return true
	}

	saved, err := p.deps.Sessions.Save(sess)
	if err != nil {
		p.fail(w, r, "save session failed", err)
		return false
	}
	p.setCookie(w, saved.ID, int(p.deps.Sessions.TTL()/time.Second))
	return true
}

func (p *pages) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.deps.Cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.deps.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirect commits sess and sends the browser back to a GET so the view is
// recomputed from the new state.
func (p *pages) redirect(w http.ResponseWriter, r *http.Request, sess auth.Session, target string) {
	if !p.commit(w, r, sess) {
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (p *pages) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	p.log(r).Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func (p *pages) log(r *http.Request) *slog.Logger {
	return p.deps.Logger.With("rid", requestIDFromContext(r.Context()))
}
