package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"secureentry/dashboard/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

type View int

const (
	ViewLogin View = iota
	ViewDashboard
)

func (v View) String() string {
	if v == ViewDashboard {
		return "dashboard"
	}
	return "login"
}

// Route picks the view for a session state. The authenticated flag is the
// only input.
func Route(st auth.State) View {
	if st.Authenticated {
		return ViewDashboard
	}
	return ViewLogin
}

type Tab string

const (
	TabSuggestions Tab = "suggestions"
	TabActivity    Tab = "activity"
)

// ParseTab falls back to the suggestions tab for unknown values.
func ParseTab(s string) Tab {
	if Tab(s) == TabActivity {
		return TabActivity
	}
	return TabSuggestions
}

type LoginPage struct {
	LoginError      string
	Flashes         []auth.Flash
	DemoCredentials []auth.Credential
}

// DashboardPage is the dashboard view model. Suggestions and activity
// entries are never stored, so both tabs always show their empty state.
type DashboardPage struct {
	UserID     string
	Flashes    []auth.Flash
	ActiveTab  Tab
	Categories []Category
	Priorities []Priority
	Stats      SuggestionStats
	LogTypes   []LogType
	Today      string
	SchemaJSON string
}

type haltedPage struct {
	Message string
}

// Renderer turns session state into HTML.
type Renderer struct {
	tmpl    *template.Template
	demo    auth.CredentialLister
	nowFunc func() time.Time
}

// NewRenderer parses the embedded templates. When demo is non-nil its
// credentials are listed on the login view.
func NewRenderer(demo auth.CredentialLister) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, demo: demo, nowFunc: time.Now}, nil
}

// Render writes the view selected by Route(st). Output is buffered so a
// template failure never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, st auth.State, flashes []auth.Flash, tab Tab) error {
	var (
		name string
		data any
		err  error
	)
	switch Route(st) {
	case ViewDashboard:
		name = "dashboard.html"
		data, err = r.dashboardPage(st, flashes, tab)
	default:
		name = "login.html"
		data, err = r.loginPage(st, flashes)
	}
	if err != nil {
		return err
	}
	return r.execute(w, name, data)
}

// RenderHalted writes the page shown after the exit action.
func (r *Renderer) RenderHalted(w io.Writer) error {
	return r.execute(w, "halted.html", haltedPage{Message: MsgTerminated})
}

func (r *Renderer) loginPage(st auth.State, flashes []auth.Flash) (LoginPage, error) {
	page := LoginPage{LoginError: st.LoginError, Flashes: flashes}
	if r.demo != nil {
		creds, err := r.demo.List()
		if err != nil {
			return LoginPage{}, fmt.Errorf("list demo credentials: %w", err)
		}
		page.DemoCredentials = creds
	}
	return page, nil
}

func (r *Renderer) dashboardPage(st auth.State, flashes []auth.Flash, tab Tab) (DashboardPage, error) {
	schema, err := json.MarshalIndent(ActivityEntrySchema(), "", "  ")
	if err != nil {
		return DashboardPage{}, fmt.Errorf("encode log entry schema: %w", err)
	}
	return DashboardPage{
		UserID:     st.UserID,
		Flashes:    flashes,
		ActiveTab:  ParseTab(string(tab)),
		Categories: Categories(),
		Priorities: Priorities(),
		LogTypes:   LogTypes(),
		Today:      r.nowFunc().Format(dateLayout),
		SchemaJSON: string(schema),
	}, nil
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
