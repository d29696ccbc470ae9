// Package lsp implements the ritobin language server: the JSON-RPC
// transport, the document session and the request and notification
// handlers that sit on top of the analysis packages.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
	"github.com/yaklabco/ritobin-lsp/pkg/meta"
	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
)

// ServerName is announced to clients in the initialize result.
const ServerName = "ritobin-lsp"

// Options configure a Server.
type Options struct {
	// Version is announced in the initialize result.
	Version string

	Logger *log.Logger

	// Meta is the metadata index used for hover. A fresh index is created
	// when nil.
	Meta *meta.Service

	// MetaPath is the metadata dump loaded after initialize. The client's
	// initializationOptions.metaPath takes precedence.
	MetaPath string

	// WatchMeta reloads the dump whenever it changes on disk.
	WatchMeta bool

	// MaxWorkers bounds the number of concurrently running handlers. Zero
	// runs every message on its own goroutine without a bound.
	MaxWorkers int64

	// MaxDiagnostics caps the diagnostics published per document.
	MaxDiagnostics int

	// EvictOnClose drops documents from the cache on didClose.
	EvictOnClose bool

	// StandardTokens restricts semantic tokens to the standard LSP types
	// and modifiers.
	StandardTokens bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		WatchMeta:      true,
		MaxDiagnostics: analysis.MaxDiagnostics,
		EvictOnClose:   true,
	}
}

// Server is a ritobin language server. A Server serves a single
// connection.
type Server struct {
	opts    Options
	logger  *log.Logger
	session *Session
	meta    *meta.Service
	sem     *semaphore.Weighted

	conn    *Conn
	client  ClientConfig
	workers sync.WaitGroup
}

// NewServer creates a server with opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	service := opts.Meta
	if service == nil {
		service = meta.NewService(logger)
	}
	var sem *semaphore.Weighted
	if opts.MaxWorkers > 0 {
		sem = semaphore.NewWeighted(opts.MaxWorkers)
	}
	return &Server{
		opts:    opts,
		logger:  logger,
		session: NewSession(),
		meta:    service,
		sem:     sem,
	}
}

// Session returns the server's document cache.
func (s *Server) Session() *Session {
	return s.session
}

// Meta returns the server's metadata index.
func (s *Server) Meta() *meta.Service {
	return s.meta
}

// Client returns what the client told the server during initialize.
func (s *Server) Client() ClientConfig {
	return s.client
}

// Serve runs the server over r and w until the client exits, the input ends
// or ctx is canceled. Handlers still running when the loop ends are waited
// for and their output is flushed.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	conn := NewConn(r, w, s.logger)
	conn.Start()
	defer conn.Close()
	s.conn = conn

	if err := s.initialize(ctx); err != nil {
		return err
	}

	stopMeta := s.startMeta(ctx)
	defer stopMeta()

	err := s.mainLoop(ctx)
	s.workers.Wait()
	return err
}

func (s *Server) initialize(ctx context.Context) error {
	id, raw, err := s.conn.InitializeStart(ctx)
	if err != nil {
		return err
	}

	var params InitializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			_ = s.conn.ReplyError(id, &ResponseError{Code: CodeInvalidParams, Message: err.Error()})
			return fmt.Errorf("decode initialize params: %w", err)
		}
	}
	s.client = NewClientConfig(&params)
	s.logger.Info("Client connected",
		logging.FieldClient, s.client.Name,
		logging.FieldVersion, s.client.Version,
		logging.FieldPath, s.client.RootPath,
	)

	if err := s.conn.InitializeFinish(id, s.initializeResult()); err != nil {
		return err
	}
	if err := s.conn.Notify(MethodServerStatus, ServerStatusParams{Health: HealthOK, Quiescent: true}); err != nil {
		return fmt.Errorf("send server status: %w", err)
	}
	return nil
}

func (s *Server) initializeResult() InitializeResult {
	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncFull,
			},
			HoverProvider:              true,
			CompletionProvider:         &CompletionOptions{},
			DefinitionProvider:         true,
			DocumentFormattingProvider: true,
			SemanticTokensProvider: &SemanticTokensOptions{
				Legend: semtok.NewLegend(),
				Range:  true,
				Full:   &SemanticTokensFullOptions{Delta: true},
			},
		},
		ServerInfo: &ServerInfo{Name: ServerName, Version: s.opts.Version},
	}
}

// startMeta loads the metadata dump in the background and, when enabled,
// watches it for changes. The returned function stops the watcher.
func (s *Server) startMeta(ctx context.Context) func() {
	path := s.opts.MetaPath
	if s.client.Options.MetaPath != "" {
		path = s.client.Options.MetaPath
	}
	if path == "" {
		s.logger.Info("No metadata dump configured, hover is disabled")
		return func() {}
	}

	s.meta.LoadFile(path)
	if !s.opts.WatchMeta {
		return func() {}
	}

	watcher, err := meta.NewWatcher(s.meta, path, 0)
	if err != nil {
		s.logger.Warn("Cannot watch metadata dump", logging.FieldPath, path, logging.FieldError, err)
		return func() {}
	}
	if err := watcher.Start(ctx); err != nil {
		s.logger.Warn("Cannot watch metadata dump", logging.FieldPath, path, logging.FieldError, err)
		watcher.Stop()
		return func() {}
	}
	return watcher.Stop
}

// mainLoop dispatches inbound messages in order of arrival. It never waits
// for a handler: every message runs on its own goroutine, so handlers may
// finish and respond out of order.
func (s *Server) mainLoop(ctx context.Context) error {
	shutdown := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-s.conn.Inbox():
			if !ok {
				if err := s.conn.Err(); err != nil {
					return err
				}
				if shutdown {
					return nil
				}
				return ErrConnClosed
			}

			switch {
			case msg.IsRequest() && msg.Method == MethodShutdown:
				shutdown = true
				s.logger.Info("Shutdown requested")
				_ = s.conn.Reply(msg.ID, nil)
			case msg.IsRequest() && shutdown:
				_ = s.conn.ReplyError(msg.ID, &ResponseError{
					Code:    CodeInvalidRequest,
					Message: "server is shutting down",
				})
			case msg.IsNotification() && msg.Method == MethodExit:
				if !shutdown {
					return ErrExitWithoutShutdown
				}
				return nil
			case msg.IsRequest(), msg.IsNotification():
				s.dispatch(ctx, msg)
			default:
				s.logger.Error("Unexpected response from client", logging.FieldRequestID, string(msg.ID))
			}
		}
	}
}

func (s *Server) dispatch(ctx context.Context, msg *Message) {
	s.workers.Add(1)
	inflightWorkers.Inc()
	go s.work(ctx, msg)
}

// work handles one message. Panics are recovered: a request gets an
// InternalError response and the server keeps running.
func (s *Server) work(ctx context.Context, msg *Message) {
	defer s.workers.Done()
	defer inflightWorkers.Dec()

	isRequest := msg.IsRequest()
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			if isRequest {
				_ = s.conn.ReplyError(msg.ID, toResponseError(err))
			}
			return
		}
		defer s.sem.Release(1)
	}

	kind := kindNotification
	if isRequest {
		kind = kindRequest
	}
	ctx, span := startMessageSpan(ctx, msg, kind)
	defer span.End()

	logger := s.logger.With(logging.FieldMethod, msg.Method)
	if isRequest {
		logger = logger.With(logging.FieldRequestID, string(msg.ID))
	}

	start := time.Now()
	result := resultOK
	defer func() {
		if r := recover(); r != nil {
			result = resultPanic
			logger.Error("Handler panicked", "panic", r, "stack", string(debug.Stack()))
			if isRequest {
				_ = s.conn.ReplyError(msg.ID, &ResponseError{
					Code:    CodeInternalError,
					Message: fmt.Sprintf("%s panicked: %v", msg.Method, r),
				})
			}
		}
		recordMessage(span, msg.Method, kind, result, time.Since(start))
	}()

	var err error
	if isRequest {
		err = s.handleRequest(ctx, msg)
	} else {
		err = s.handleNotification(ctx, msg)
	}
	if err != nil {
		result = resultError
		span.RecordError(err)
		logger.Error("Handler failed", logging.FieldError, err)
	}
	logger.Debug("Handled", logging.FieldDuration, time.Since(start))
}

func (s *Server) handleRequest(ctx context.Context, msg *Message) error {
	handler, ok := requestHandlers[msg.Method]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrMethodNotFound, msg.Method)
		_ = s.conn.ReplyError(msg.ID, toResponseError(err))
		return err
	}

	result, err := handler(s, ctx, msg.Params)
	if err != nil {
		_ = s.conn.ReplyError(msg.ID, toResponseError(err))
		return err
	}
	if err := s.conn.Reply(msg.ID, result); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

func (s *Server) handleNotification(ctx context.Context, msg *Message) error {
	handler, ok := notificationHandlers[msg.Method]
	if !ok {
		s.logger.Debug("Ignoring notification", logging.FieldMethod, msg.Method)
		return nil
	}
	return handler(s, ctx, msg.Params)
}
