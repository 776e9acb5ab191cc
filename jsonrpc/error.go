package jsonrpc

import "fmt"

// Standard JSON-RPC 2.0 error codes plus the application range.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeUnauthorized = -32001
	CodeForbidden    = -32002
)

// Error is a JSON-RPC error object. Data is serialized even when nil, so the
// wire form always carries all three members.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError builds an Error with nil data.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func errUnauthorized() *Error {
	return NewError(CodeUnauthorized, "Требуется авторизация")
}

func errForbidden() *Error {
	return NewError(CodeForbidden, "Требуются права администратора")
}
