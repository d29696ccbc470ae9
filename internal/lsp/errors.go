package lsp

import (
	"errors"
	"fmt"
)

// JSON-RPC and LSP error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
	CodeRequestFailed        = -32803
)

// Sentinel errors for server operations.
var (
	// ErrDocumentNotCached indicates a request for a document that was never
	// opened or has been closed.
	ErrDocumentNotCached = errors.New("document not in cache, did the client send didOpen?")

	// ErrInvalidParams indicates request parameters that could not be decoded.
	ErrInvalidParams = errors.New("invalid params")

	// ErrMethodNotFound indicates a request for a method the server does not
	// implement.
	ErrMethodNotFound = errors.New("unhandled method")

	// ErrFraming indicates a malformed message header. The stream cannot be
	// resynchronized after it.
	ErrFraming = errors.New("malformed message header")

	// ErrMalformedMessage indicates a message body that is not valid JSON.
	ErrMalformedMessage = errors.New("malformed message body")

	// ErrConnClosed indicates the connection was closed.
	ErrConnClosed = errors.New("connection closed")

	// ErrExitBeforeInitialize indicates the client sent exit during the
	// initialize handshake.
	ErrExitBeforeInitialize = errors.New("exit received before initialize")

	// ErrExitWithoutShutdown indicates the client sent exit without a prior
	// shutdown request.
	ErrExitWithoutShutdown = errors.New("exit received without shutdown")
)

// ResponseError is a JSON-RPC error object. It doubles as a Go error so
// handlers can return a specific code.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("LSP error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("LSP error %d: %s", e.Code, e.Message)
}

// toResponseError maps a handler error onto a JSON-RPC error object.
func toResponseError(err error) *ResponseError {
	var rerr *ResponseError
	switch {
	case errors.As(err, &rerr):
		return rerr
	case errors.Is(err, ErrInvalidParams):
		return &ResponseError{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, ErrDocumentNotCached):
		return &ResponseError{Code: CodeRequestFailed, Message: err.Error()}
	case errors.Is(err, ErrMethodNotFound):
		return &ResponseError{Code: CodeMethodNotFound, Message: err.Error()}
	default:
		return &ResponseError{Code: CodeInternalError, Message: err.Error()}
	}
}
