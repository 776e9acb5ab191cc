package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Elizaveta2894/rgz-part2/endpoint"
)

func TestSessionIdentity(t *testing.T) {
	s := newSession(time.Hour)

	if _, ok := s.Identity(); ok {
		t.Error("fresh session should be anonymous")
	}

	s.Login(Identity{UserID: 1, Username: "admin", IsAdmin: true})
	ident, ok := s.Identity()
	if !ok || ident.UserID != 1 || ident.Username != "admin" || !ident.IsAdmin {
		t.Errorf("got %+v, %v", ident, ok)
	}

	s.Logout()
	if _, ok := s.Identity(); ok {
		t.Error("session should be anonymous after logout")
	}
}

func TestLoginRegeneratesSIDAndKeepsFlashes(t *testing.T) {
	s := newSession(time.Hour)
	before := s.ID()
	s.Flash("info", "до входа")

	s.Login(Identity{UserID: 2, Username: "user"})

	if s.ID() == before {
		t.Error("login must regenerate the session id")
	}
	flashes := s.Flashes()
	if len(flashes) != 1 || flashes[0].Message != "до входа" {
		t.Errorf("flashes lost across login: %v", flashes)
	}
}

func TestFlashesReturnedOnce(t *testing.T) {
	s := newSession(time.Hour)
	s.Flash("success", "готово")
	s.Flash("danger", "ошибка")

	flashes := s.Flashes()
	if len(flashes) != 2 {
		t.Fatalf("got %d flashes, want 2", len(flashes))
	}
	if flashes[0].Category != "success" || flashes[1].Category != "danger" {
		t.Errorf("got %v", flashes)
	}
	if again := s.Flashes(); len(again) != 0 {
		t.Errorf("second read should be empty, got %v", again)
	}
}

func TestValidateResetsExpiredSession(t *testing.T) {
	s := newSession(time.Hour)
	s.Login(Identity{UserID: 1, Username: "admin"})
	oldSID := s.ID()

	s.data.ExpireAt = time.Now().Add(-time.Minute).Unix()
	s.validate()

	if s.ID() == oldSID {
		t.Error("expired session should be reset")
	}
	if _, ok := s.Identity(); ok {
		t.Error("expired session should lose its identity")
	}
}

func TestExtendSlidesExpiry(t *testing.T) {
	s := newSession(time.Hour)

	// plenty of time left, no extension
	s.changed = false
	s.extend()
	if s.changed {
		t.Error("extend should be a no-op while more than half the period remains")
	}

	// less than half remains
	s.data.ExpireAt = time.Now().Add(10 * time.Minute).Unix()
	s.extend()
	if !s.changed {
		t.Error("extend should slide the expiry")
	}
	if until := time.Until(s.Expires()); until < 55*time.Minute {
		t.Errorf("expiry not extended, %v remaining", until)
	}
}

func testProcessor(t *testing.T) (*SecureCookie, endpoint.Processor) {
	t.Helper()
	sc, err := NewSecureCookie("session", "v1", testKeys(), WithSecure(false))
	if err != nil {
		t.Fatal(err)
	}
	return sc, SessionProcessor(sc, time.Hour)
}

func TestSessionProcessorAnonymous(t *testing.T) {
	_, proc := testProcessor(t)

	var sawSession bool
	h := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = ContextSession(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !sawSession {
		t.Error("handler should see a session")
	}
	// untouched anonymous session writes no cookie
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Errorf("expected no cookies, got %v", cookies)
	}
}

func TestSessionProcessorRoundTrip(t *testing.T) {
	_, proc := testProcessor(t)

	login := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ContextSession(r.Context()).Login(Identity{UserID: 1, Username: "admin", IsAdmin: true})
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}

	var ident Identity
	var ok bool
	read := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok = ContextSession(r.Context()).Identity()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	read.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || ident.UserID != 1 || ident.Username != "admin" || !ident.IsAdmin {
		t.Errorf("identity did not survive the round trip: %+v, %v", ident, ok)
	}
}

func TestSessionProcessorRejectsTamperedCookie(t *testing.T) {
	_, proc := testProcessor(t)

	var ok bool
	h := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = ContextSession(r.Context()).Identity()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "v1.garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Error("tampered cookie must yield an anonymous session")
	}
}

func TestSessionProcessorFlashAcrossRequests(t *testing.T) {
	_, proc := testProcessor(t)

	flash := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ContextSession(r.Context()).Flash("success", "сообщение")
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	flash.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	var got []FlashMessage
	read := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ContextSession(r.Context()).Flashes()
		w.WriteHeader(http.StatusOK)
	}))
	rec2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	read.ServeHTTP(rec2, req)

	if len(got) != 1 || got[0].Message != "сообщение" {
		t.Fatalf("flash did not survive the round trip: %v", got)
	}

	// the cleared state is written back: a third request sees nothing
	cookies2 := rec2.Result().Cookies()
	if len(cookies2) != 1 {
		t.Fatalf("expected the cleared session cookie, got %d", len(cookies2))
	}
	var again []FlashMessage
	read2 := endpoint.Middleware(proc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		again = ContextSession(r.Context()).Flashes()
		w.WriteHeader(http.StatusOK)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies2[0])
	read2.ServeHTTP(httptest.NewRecorder(), req2)

	if len(again) != 0 {
		t.Errorf("flashes should be one-shot, got %v", again)
	}
}
