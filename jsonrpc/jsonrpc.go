// Package jsonrpc implements a JSON-RPC 2.0 dispatcher over a single HTTP
// POST endpoint.
//
// The dispatcher multiplexes named methods registered ahead of time, enforces
// per-method access tiers and keeps two error channels strictly apart:
// protocol failures travel in the JSON-RPC error envelope, while domain
// failures are ordinary results produced by the method itself. Batch requests
// are not supported.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Access is the authorization tier required to call a method.
type Access int

const (
	// Public methods are callable by anyone.
	Public Access = iota
	// RequiresAuth methods need an authenticated session.
	RequiresAuth
	// RequiresAdmin methods additionally need the admin flag.
	RequiresAdmin
)

// Authorizer answers access questions about the current request context.
type Authorizer interface {
	Authenticated(ctx context.Context) bool
	Admin(ctx context.Context) bool
}

// HandlerFunc executes one method call. params is the raw params object, or
// nil when the request omitted it. A returned *Error goes out verbatim in the
// error envelope; any other error becomes an internal error.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Recorder observes completed method calls. code is 0 on success.
type Recorder interface {
	ObserveRPC(method string, code int, elapsed time.Duration)
}

type registration struct {
	access  Access
	handler HandlerFunc
}

// Dispatcher routes JSON-RPC requests to registered methods.
type Dispatcher struct {
	auth     Authorizer
	log      *zap.Logger
	recorder Recorder
	methods  map[string]registration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the request logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithRecorder sets the call metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(d *Dispatcher) { d.recorder = rec }
}

// NewDispatcher creates a Dispatcher with no methods registered.
func NewDispatcher(auth Authorizer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		auth:    auth,
		log:     zap.NewNop(),
		methods: make(map[string]registration),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a method. Registering the same name twice panics; method
// tables are assembled once at startup and a collision is a programming
// error.
func (d *Dispatcher) Register(name string, access Access, h HandlerFunc) {
	if name == "" {
		panic("jsonrpc: empty method name")
	}
	if h == nil {
		panic("jsonrpc: nil handler for method " + name)
	}
	if _, dup := d.methods[name]; dup {
		panic("jsonrpc: duplicate method " + name)
	}
	d.methods[name] = registration{access: access, handler: h}
}

// Response is the JSON-RPC response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

func success(result any, id json.RawMessage) Response {
	if result == nil {
		result = struct{}{}
	}
	return Response{JSONRPC: "2.0", Result: result, ID: id}
}

func failure(err *Error, id json.RawMessage) Response {
	return Response{JSONRPC: "2.0", Error: err, ID: id}
}

// Endpoint returns the HTTP handler for the dispatcher. It accepts only POST
// with an application/json body; well-formed posts always produce HTTP 200
// and any failure is reported inside the JSON-RPC envelope.
func (d *Dispatcher) Endpoint() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "cannot read body", http.StatusBadRequest)
			return
		}

		resp := d.Handle(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(resp); err != nil {
			d.log.Error("jsonrpc: encode response", zap.Error(err))
		}
	})
}

// Handle processes one raw request body and returns the response envelope.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) Response {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return failure(NewError(CodeParseError, "Invalid JSON"), nil)
		}
		return failure(NewError(CodeInvalidRequest, "Invalid Request"), nil)
	}
	if obj == nil {
		// body was the JSON literal null
		return failure(NewError(CodeInvalidRequest, "Invalid Request"), nil)
	}

	id := obj["id"]

	var version string
	if err := json.Unmarshal(obj["jsonrpc"], &version); err != nil || version != "2.0" {
		return failure(NewError(CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`), id)
	}

	var method string
	if raw, ok := obj["method"]; !ok || json.Unmarshal(raw, &method) != nil || method == "" {
		return failure(NewError(CodeInvalidRequest, "Invalid Request: method is required"), id)
	}

	params, hasParams := obj["params"]
	if hasParams && !bytes.HasPrefix(bytes.TrimSpace(params), []byte("{")) {
		return failure(NewError(CodeInvalidParams, "Invalid params"), id)
	}

	reg, ok := d.methods[method]
	if !ok {
		return failure(NewError(CodeMethodNotFound, "Method not found: "+method), id)
	}

	if reg.access >= RequiresAuth && !d.auth.Authenticated(ctx) {
		return failure(errUnauthorized(), id)
	}
	if reg.access >= RequiresAdmin && !d.auth.Admin(ctx) {
		return failure(errForbidden(), id)
	}

	start := time.Now()
	result, err := d.call(ctx, reg.handler, params)
	elapsed := time.Since(start)

	var rpcErr *Error
	if err != nil && !errors.As(err, &rpcErr) {
		rpcErr = NewError(CodeInternalError, "Internal error: "+err.Error())
	}

	code := 0
	if rpcErr != nil {
		code = rpcErr.Code
	}
	if d.recorder != nil {
		d.recorder.ObserveRPC(method, code, elapsed)
	}
	d.log.Info("jsonrpc call",
		zap.String("rpc_method", method),
		zap.Int("code", code),
		zap.Duration("duration", elapsed),
	)

	if rpcErr != nil {
		return failure(rpcErr, id)
	}
	return success(result, id)
}

// call invokes the handler, converting a panic into an internal error so one
// broken method cannot take down the server.
func (d *Dispatcher) call(ctx context.Context, h HandlerFunc, params json.RawMessage) (result any, err error) {
	defer func() {
		if v := recover(); v != nil {
			d.log.Error("jsonrpc: method panic", zap.Any("panic", v))
			err = NewError(CodeInternalError, fmt.Sprintf("Internal error: %v", v))
		}
	}()
	return h(ctx, params)
}

// Method adapts a typed handler into a HandlerFunc. The params object is
// unmarshaled into a fresh P; a request without params gets a zero P.
func Method[P any](fn func(ctx context.Context, params *P) (any, error)) HandlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		params := new(P)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, params); err != nil {
				return nil, NewError(CodeInvalidParams, "Invalid params")
			}
		}
		return fn(ctx, params)
	}
}
