package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Elizaveta2894/rgz-part2/endpoint"
)

type sessionKeyType struct{}

var sessionKey sessionKeyType

// Identity names the authenticated user bound to a session.
type Identity struct {
	UserID   int
	Username string
	IsAdmin  bool
}

// Session is the per-request session view. Every request carries one; a
// session without an identity is anonymous and still usable for flashes.
type Session interface {
	// ID is a stable random identifier for the session, usable as a log
	// correlation key.
	ID() string

	// Identity returns the logged-in user, or ok=false for anonymous
	// sessions.
	Identity() (ident Identity, ok bool)

	// Login binds ident to a fresh session. The session identifier is
	// regenerated so a pre-login cookie cannot be fixed onto the account.
	Login(ident Identity)

	// Logout drops the identity and all session state.
	Logout()

	// Expires reports the current expiry instant.
	Expires() time.Time

	// Flash queues a one-shot message for the next rendered page.
	Flash(category, message string)

	// Flashes returns and clears all queued messages.
	Flashes() []FlashMessage
}

// FlashMessage is a one-shot notification shown on the next page load.
type FlashMessage struct {
	Category string `cbor:"1,keyasint"`
	Message  string `cbor:"2,keyasint"`
}

type sessionData struct {
	SID      string         `cbor:"1,keyasint"`
	UserID   int            `cbor:"2,keyasint,omitempty"`
	Username string         `cbor:"3,keyasint,omitempty"`
	IsAdmin  bool           `cbor:"4,keyasint,omitempty"`
	ExpireAt int64          `cbor:"5,keyasint"`
	Flashes  []FlashMessage `cbor:"6,keyasint,omitempty"`
}

type session struct {
	data    sessionData
	period  time.Duration
	changed bool
}

func newSession(period time.Duration) *session {
	s := &session{period: period}
	s.reset()
	s.changed = false
	return s
}

func (s *session) reset() {
	s.data = sessionData{
		SID:      uuid.NewString(),
		ExpireAt: time.Now().Add(s.period).Unix(),
	}
	s.changed = true
}

// validate checks the expiry and resets the session when it has lapsed.
func (s *session) validate() {
	if time.Now().Unix() >= s.data.ExpireAt {
		s.reset()
	}
}

// extend slides the expiry forward when less than half the period remains.
func (s *session) extend() {
	target := time.Now().Add(s.period)
	if target.Unix()-s.data.ExpireAt > int64(s.period.Seconds())/2 {
		s.data.ExpireAt = target.Unix()
		s.changed = true
	}
}

func (s *session) ID() string { return s.data.SID }

func (s *session) Identity() (Identity, bool) {
	if s.data.UserID == 0 && s.data.Username == "" {
		return Identity{}, false
	}
	return Identity{UserID: s.data.UserID, Username: s.data.Username, IsAdmin: s.data.IsAdmin}, true
}

func (s *session) Login(ident Identity) {
	flashes := s.data.Flashes
	s.reset()
	s.data.UserID = ident.UserID
	s.data.Username = ident.Username
	s.data.IsAdmin = ident.IsAdmin
	s.data.Flashes = flashes
}

func (s *session) Logout() {
	s.reset()
}

func (s *session) Expires() time.Time {
	return time.Unix(s.data.ExpireAt, 0)
}

func (s *session) Flash(category, message string) {
	s.data.Flashes = append(s.data.Flashes, FlashMessage{Category: category, Message: message})
	s.changed = true
}

func (s *session) Flashes() []FlashMessage {
	flashes := s.data.Flashes
	if flashes != nil {
		s.data.Flashes = nil
		s.changed = true
	}
	return flashes
}

// ContextSession returns the session stored in ctx, or nil when the request
// did not pass through SessionProcessor.
func ContextSession(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey).(*session)
	if s == nil {
		return nil
	}
	return s
}

// SessionProcessor loads the session from the secure cookie, exposes it via
// the request context and writes it back before the first byte of the
// response. period is the session lifetime.
func SessionProcessor(cookie *SecureCookie, period time.Duration) endpoint.Processor {
	return endpoint.ProcessorFunc(func(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error {
		s := newSession(period)
		if c, err := r.Cookie(cookie.Name()); err == nil {
			if err := cookie.Decode(c, &s.data); err != nil {
				s.reset()
			}
		}
		s.validate()
		s.extend()

		r = r.WithContext(context.WithValue(r.Context(), sessionKey, s))
		endpoint.Defer(r.Context(), func(w http.ResponseWriter) {
			if !s.changed {
				return
			}
			maxAge := int(time.Until(s.Expires()).Seconds())
			if maxAge <= 0 {
				http.SetCookie(w, cookie.Clear())
				return
			}
			c, err := cookie.Encode(&s.data, maxAge)
			if err != nil {
				return
			}
			http.SetCookie(w, c)
		})
		return next(w, r)
	})
}
