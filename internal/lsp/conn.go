package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

const outboxSize = 64

// Conn is a JSON-RPC connection over a byte stream. One goroutine reads and
// decodes inbound messages into an ordered channel; another drains the
// outbound channel and writes the frames, so writers never interleave.
type Conn struct {
	reader *bufio.Reader
	writer io.Writer
	logger *log.Logger

	inbox      chan *Message
	outbox     chan any
	closed     chan struct{}
	writerDone chan struct{}
	startOnce  sync.Once
	closeOnce  sync.Once

	errMu   sync.Mutex
	readErr error
}

// NewConn creates a connection reading from r and writing to w. Call Start
// before using it.
func NewConn(r io.Reader, w io.Writer, logger *log.Logger) *Conn {
	if logger == nil {
		logger = logging.Default()
	}
	return &Conn{
		reader:     bufio.NewReader(r),
		writer:     w,
		logger:     logger,
		inbox:      make(chan *Message),
		outbox:     make(chan any, outboxSize),
		closed:     make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// Start launches the reader and writer goroutines.
func (c *Conn) Start() {
	c.startOnce.Do(func() {
		go c.readLoop()
		go c.writeLoop()
	})
}

// Inbox returns the ordered channel of inbound messages. It is closed when
// the input ends or the connection is closed.
func (c *Conn) Inbox() <-chan *Message {
	return c.inbox
}

// Err returns the error that ended the reader, or nil on a clean EOF.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.readErr
}

// Send queues v for writing. It blocks while the outbound queue is full and
// fails once the connection is closed.
func (c *Conn) Send(v any) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}
	select {
	case <-c.closed:
		return ErrConnClosed
	case c.outbox <- v:
		return nil
	}
}

// Reply sends a successful response to the request id.
func (c *Conn) Reply(id json.RawMessage, result any) error {
	resp, err := NewResponse(id, result)
	if err != nil {
		return err
	}
	return c.Send(resp)
}

// ReplyError sends an error response to the request id.
func (c *Conn) ReplyError(id json.RawMessage, rerr *ResponseError) error {
	return c.Send(NewErrorResponse(id, rerr))
}

// Notify sends a notification.
func (c *Conn) Notify(method string, params any) error {
	return c.Send(NewNotification(method, params))
}

// Close stops accepting messages, flushes queued output and waits for the
// writer to finish. It is safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	c.startOnce.Do(func() {
		close(c.writerDone)
		close(c.inbox)
	})
	<-c.writerDone
}

func (c *Conn) readLoop() {
	defer close(c.inbox)
	for {
		msg, err := ReadMessage(c.reader)
		switch {
		case err == nil:
		case errors.Is(err, ErrMalformedMessage):
			c.logger.Warn("Dropping malformed message", logging.FieldError, err)
			_ = c.ReplyError(nil, &ResponseError{Code: CodeParseError, Message: err.Error()})
			continue
		case errors.Is(err, io.EOF):
			return
		default:
			c.setErr(err)
			return
		}

		select {
		case c.inbox <- msg:
		case <-c.closed:
			return
		}
	}
}

func (c *Conn) writeLoop() {
	defer close(c.writerDone)
	for {
		select {
		case v := <-c.outbox:
			c.write(v)
		case <-c.closed:
			for {
				select {
				case v := <-c.outbox:
					c.write(v)
				default:
					return
				}
			}
		}
	}
}

func (c *Conn) write(v any) {
	if err := WriteMessage(c.writer, v); err != nil {
		c.logger.Error("Failed to write message", logging.FieldError, err)
	}
}

func (c *Conn) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.readErr = err
}

// InitializeStart waits for the client's initialize request. Other requests
// are answered with ServerNotInitialized and notifications are dropped, as
// the protocol requires. It returns the request ID and raw parameters.
func (c *Conn) InitializeStart(ctx context.Context) (json.RawMessage, json.RawMessage, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case msg, ok := <-c.inbox:
			if !ok {
				if err := c.Err(); err != nil {
					return nil, nil, fmt.Errorf("waiting for initialize: %w", err)
				}
				return nil, nil, fmt.Errorf("waiting for initialize: %w", ErrConnClosed)
			}
			switch {
			case msg.IsRequest() && msg.Method == MethodInitialize:
				return msg.ID, msg.Params, nil
			case msg.IsRequest():
				_ = c.ReplyError(msg.ID, &ResponseError{
					Code:    CodeServerNotInitialized,
					Message: fmt.Sprintf("expected initialize request, got %s", msg.Method),
				})
			case msg.IsNotification() && msg.Method == MethodExit:
				return nil, nil, ErrExitBeforeInitialize
			default:
				c.logger.Debug("Dropping message before initialize", logging.FieldMethod, msg.Method)
			}
		}
	}
}

// InitializeFinish answers the initialize request with result.
func (c *Conn) InitializeFinish(id json.RawMessage, result any) error {
	if err := c.Reply(id, result); err != nil {
		return fmt.Errorf("send initialize result: %w", err)
	}
	return nil
}
