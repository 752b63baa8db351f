package auth

import "time"

// Credential is one row of the credential table.
type Credential struct {
	UserID    string `json:"user_id"`
	AccessKey string `json:"access_key"`
}

// State is the per-client authentication state. The zero value is the
// anonymous state.
type State struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id"`
	LoginError    string `json:"login_error"`
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashInfo    FlashKind = "info"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

// Flash is a transient notice shown once on the next render.
type Flash struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the session carries nothing beyond the anonymous
// defaults. Such a session is not worth storing.
func (s Session) Empty() bool {
	return s.State == (State{}) && len(s.Flashes) == 0
}

func (s *Session) AddFlash(kind FlashKind, text string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Text: text})
}

// TakeFlashes returns the pending notices and clears them.
func (s *Session) TakeFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}
