package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// JSONRPCVersion is the JSON-RPC version used by LSP.
const JSONRPCVersion = "2.0"

const contentLengthHeader = "Content-Length:"

// Message is any inbound JSON-RPC message. Requests carry an ID and a method,
// notifications only a method, responses only an ID.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// IsRequest reports whether the message expects a response.
func (m *Message) IsRequest() bool {
	return m.Method != "" && hasID(m.ID)
}

// IsNotification reports whether the message is a notification.
func (m *Message) IsNotification() bool {
	return m.Method != "" && !hasID(m.ID)
}

// IsResponse reports whether the message answers a request of ours.
func (m *Message) IsResponse() bool {
	return m.Method == "" && hasID(m.ID)
}

func hasID(id json.RawMessage) bool {
	return len(id) > 0 && !bytes.Equal(id, []byte("null"))
}

// Response is an outbound JSON-RPC response. Exactly one of Result and Error
// is set; a successful response with no value carries a JSON null result.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// NewResponse builds a successful response for id.
func NewResponse(id json.RawMessage, result any) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: normalizeID(id), Result: data}, nil
}

// NewErrorResponse builds a failed response for id.
func NewErrorResponse(id json.RawMessage, rerr *ResponseError) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: normalizeID(id), Error: rerr}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

// Notification is an outbound JSON-RPC notification.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewNotification builds a notification for method.
func NewNotification(method string, params any) *Notification {
	return &Notification{JSONRPC: JSONRPCVersion, Method: method, Params: params}
}

// ReadMessage reads one Content-Length framed message. Header lines other
// than Content-Length are ignored. A body that is not valid JSON yields an
// error wrapping ErrMalformedMessage; the stream stays usable.
func ReadMessage(r *bufio.Reader) (*Message, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && contentLength < 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, contentLengthHeader) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, contentLengthHeader))
		contentLength, err = strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid Content-Length %q", ErrFraming, value)
		}
		if contentLength < 0 {
			return nil, fmt.Errorf("%w: negative Content-Length %d", ErrFraming, contentLength)
		}
	}
	if contentLength <= 0 {
		return nil, fmt.Errorf("%w: missing or zero Content-Length header", ErrFraming)
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return &msg, nil
}

// WriteMessage marshals v and writes it with a Content-Length header.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}
