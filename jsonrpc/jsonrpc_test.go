package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubAuth struct {
	authed bool
	admin  bool
}

func (a stubAuth) Authenticated(ctx context.Context) bool { return a.authed }
func (a stubAuth) Admin(ctx context.Context) bool         { return a.admin }

func newTestDispatcher(auth Authorizer) *Dispatcher {
	d := NewDispatcher(auth)
	d.Register("echo", Public, Method(func(ctx context.Context, p *struct {
		Value string `json:"value"`
	}) (any, error) {
		return map[string]any{"value": p.Value}, nil
	}))
	d.Register("auth_only", RequiresAuth, Method(func(ctx context.Context, p *struct{}) (any, error) {
		return map[string]any{"ok": true}, nil
	}))
	d.Register("admin_only", RequiresAdmin, Method(func(ctx context.Context, p *struct{}) (any, error) {
		return map[string]any{"ok": true}, nil
	}))
	d.Register("fail", Public, func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})
	d.Register("panics", Public, func(ctx context.Context, params json.RawMessage) (any, error) {
		panic("broken")
	})
	d.Register("typed", Public, Method(func(ctx context.Context, p *struct {
		Count int `json:"count"`
	}) (any, error) {
		return map[string]any{"count": p.Count}, nil
	}))
	d.Register("nil_result", Public, func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, nil
	})
	return d
}

func callRPC(t *testing.T, d *Dispatcher, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	d.Endpoint().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func errorObj(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	obj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", resp)
	}
	return obj
}

func TestPOSTOnly(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api", nil)
			rec := httptest.NewRecorder()
			d.Endpoint().ServeHTTP(rec, req)
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("got status %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestContentTypeEnforcement(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	d.Endpoint().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}

	// charset parameter is fine
	req = httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"jsonrpc":"2.0","method":"echo","id":1}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	d.Endpoint().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequestValidation(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"MalformedJSON", `{"jsonrpc":`, CodeParseError, "Invalid JSON"},
		{"ArrayBody", `[1,2,3]`, CodeInvalidRequest, "Invalid Request"},
		{"StringBody", `"hello"`, CodeInvalidRequest, "Invalid Request"},
		{"NullBody", `null`, CodeInvalidRequest, "Invalid Request"},
		{"MissingVersion", `{"method":"echo","id":1}`, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`},
		{"WrongVersion", `{"jsonrpc":"1.0","method":"echo","id":1}`, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`},
		{"NumericVersion", `{"jsonrpc":2.0,"method":"echo","id":1}`, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`},
		{"MissingMethod", `{"jsonrpc":"2.0","id":1}`, CodeInvalidRequest, "Invalid Request: method is required"},
		{"EmptyMethod", `{"jsonrpc":"2.0","method":"","id":1}`, CodeInvalidRequest, "Invalid Request: method is required"},
		{"NonStringMethod", `{"jsonrpc":"2.0","method":42,"id":1}`, CodeInvalidRequest, "Invalid Request: method is required"},
		{"ArrayParams", `{"jsonrpc":"2.0","method":"echo","params":[1],"id":1}`, CodeInvalidParams, "Invalid params"},
		{"StringParams", `{"jsonrpc":"2.0","method":"echo","params":"x","id":1}`, CodeInvalidParams, "Invalid params"},
		{"NullParams", `{"jsonrpc":"2.0","method":"echo","params":null,"id":1}`, CodeInvalidParams, "Invalid params"},
		{"UnknownMethod", `{"jsonrpc":"2.0","method":"nope","id":1}`, CodeMethodNotFound, "Method not found: nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callRPC(t, d, tt.body)
			errObj := errorObj(t, resp)
			if int(errObj["code"].(float64)) != tt.wantCode {
				t.Errorf("got code %v, want %d", errObj["code"], tt.wantCode)
			}
			if errObj["message"] != tt.wantMsg {
				t.Errorf("got message %q, want %q", errObj["message"], tt.wantMsg)
			}
		})
	}
}

func TestValidationOrderParamsBeforeMethodLookup(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	// Bad params on an unknown method reports invalid params, not method
	// not found.
	resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"nope","params":[1],"id":1}`)
	errObj := errorObj(t, resp)
	if int(errObj["code"].(float64)) != CodeInvalidParams {
		t.Errorf("got code %v, want %d", errObj["code"], CodeInvalidParams)
	}
}

func TestIDEcho(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	tests := []struct {
		name   string
		body   string
		wantID string
	}{
		{"Number", `{"jsonrpc":"2.0","method":"echo","id":7}`, `7`},
		{"String", `{"jsonrpc":"2.0","method":"echo","id":"abc"}`, `"abc"`},
		{"Null", `{"jsonrpc":"2.0","method":"echo","id":null}`, `null`},
		{"Missing", `{"jsonrpc":"2.0","method":"echo"}`, `null`},
		{"OnError", `{"jsonrpc":"2.0","method":"nope","id":42}`, `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			d.Endpoint().ServeHTTP(rec, req)

			var raw struct {
				ID json.RawMessage `json:"id"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			got := string(bytes.TrimSpace(raw.ID))
			if got == "" {
				got = "null"
			}
			if got != tt.wantID {
				t.Errorf("got id %s, want %s", got, tt.wantID)
			}
		})
	}
}

func TestErrorDataFieldAlwaysPresent(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"jsonrpc":"2.0","method":"nope","id":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	d.Endpoint().ServeHTTP(rec, req)

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"data":null`)) {
		t.Errorf("error object should carry \"data\":null, got %s", rec.Body.String())
	}
}

func TestAccessTiers(t *testing.T) {
	tests := []struct {
		name     string
		auth     stubAuth
		method   string
		wantCode int
	}{
		{"PublicAnonymous", stubAuth{}, "echo", 0},
		{"AuthAnonymous", stubAuth{}, "auth_only", CodeUnauthorized},
		{"AuthLoggedIn", stubAuth{authed: true}, "auth_only", 0},
		{"AdminAnonymous", stubAuth{}, "admin_only", CodeUnauthorized},
		{"AdminRegularUser", stubAuth{authed: true}, "admin_only", CodeForbidden},
		{"AdminAdmin", stubAuth{authed: true, admin: true}, "admin_only", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(tt.auth)
			resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"`+tt.method+`","id":1}`)

			if tt.wantCode == 0 {
				if resp["error"] != nil {
					t.Fatalf("unexpected error: %v", resp["error"])
				}
				return
			}
			errObj := errorObj(t, resp)
			if int(errObj["code"].(float64)) != tt.wantCode {
				t.Errorf("got code %v, want %d", errObj["code"], tt.wantCode)
			}
		})
	}
}

func TestAccessTierMessages(t *testing.T) {
	d := newTestDispatcher(stubAuth{})
	resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"auth_only","id":1}`)
	if msg := errorObj(t, resp)["message"]; msg != "Требуется авторизация" {
		t.Errorf("got message %q", msg)
	}

	d = newTestDispatcher(stubAuth{authed: true})
	resp = callRPC(t, d, `{"jsonrpc":"2.0","method":"admin_only","id":1}`)
	if msg := errorObj(t, resp)["message"]; msg != "Требуются права администратора" {
		t.Errorf("got message %q", msg)
	}
}

func TestHandlerErrorBecomesInternalError(t *testing.T) {
	d := newTestDispatcher(stubAuth{})
	resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"fail","id":1}`)
	errObj := errorObj(t, resp)
	if int(errObj["code"].(float64)) != CodeInternalError {
		t.Errorf("got code %v, want %d", errObj["code"], CodeInternalError)
	}
	if errObj["message"] != "Internal error: boom" {
		t.Errorf("got message %q", errObj["message"])
	}
}

func TestPanicRecovery(t *testing.T) {
	d := newTestDispatcher(stubAuth{})
	resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"panics","id":1}`)
	errObj := errorObj(t, resp)
	if int(errObj["code"].(float64)) != CodeInternalError {
		t.Errorf("got code %v, want %d", errObj["code"], CodeInternalError)
	}
	if errObj["message"] != "Internal error: broken" {
		t.Errorf("got message %q", errObj["message"])
	}
}

func TestMethodAdapter(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	resp := callRPC(t, d, `{"jsonrpc":"2.0","method":"typed","params":{"count":3},"id":1}`)
	result := resp["result"].(map[string]any)
	if result["count"].(float64) != 3 {
		t.Errorf("got count %v, want 3", result["count"])
	}

	// params field of a mismatched type fail decode
	resp = callRPC(t, d, `{"jsonrpc":"2.0","method":"typed","params":{"count":{}},"id":1}`)
	errObj := errorObj(t, resp)
	if int(errObj["code"].(float64)) != CodeInvalidParams {
		t.Errorf("got code %v, want %d", errObj["code"], CodeInvalidParams)
	}
	if errObj["message"] != "Invalid params" {
		t.Errorf("got message %q", errObj["message"])
	}

	// omitted params decode as zero values
	resp = callRPC(t, d, `{"jsonrpc":"2.0","method":"typed","id":1}`)
	result = resp["result"].(map[string]any)
	if result["count"].(float64) != 0 {
		t.Errorf("got count %v, want 0", result["count"])
	}
}

func TestNilResultMarshalsAsEmptyObject(t *testing.T) {
	d := newTestDispatcher(stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(`{"jsonrpc":"2.0","method":"nil_result","id":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	d.Endpoint().ServeHTTP(rec, req)

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"result":{}`)) {
		t.Errorf("nil result should serialize as {}, got %s", rec.Body.String())
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	d := NewDispatcher(stubAuth{})
	h := func(ctx context.Context, params json.RawMessage) (any, error) { return nil, nil }
	d.Register("dup", Public, h)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	d.Register("dup", Public, h)
}

func TestObserverAndRecorder(t *testing.T) {
	var gotMethod string
	var gotCode int
	rec := recorderFunc(func(method string, code int) {
		gotMethod = method
		gotCode = code
	})

	d := NewDispatcher(stubAuth{}, WithRecorder(rec))
	d.Register("echo", Public, func(ctx context.Context, params json.RawMessage) (any, error) {
		return "ok", nil
	})

	d.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"echo","id":1}`))
	if gotMethod != "echo" || gotCode != 0 {
		t.Errorf("got method=%q code=%d, want echo/0", gotMethod, gotCode)
	}
}

type recorderFunc func(method string, code int)

func (f recorderFunc) ObserveRPC(method string, code int, _ time.Duration) { f(method, code) }
