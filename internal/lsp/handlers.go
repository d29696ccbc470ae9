package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
	"github.com/yaklabco/ritobin-lsp/pkg/analysis"
	"github.com/yaklabco/ritobin-lsp/pkg/meta"
	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

type (
	requestHandler      func(s *Server, ctx context.Context, params json.RawMessage) (any, error)
	notificationHandler func(s *Server, ctx context.Context, params json.RawMessage) error
)

var requestHandlers = map[string]requestHandler{
	MethodHover:               (*Server).hover,
	MethodCompletion:          (*Server).completion,
	MethodDefinition:          (*Server).definition,
	MethodFormatting:          (*Server).formatting,
	MethodSemanticTokensFull:  (*Server).semanticTokensFull,
	MethodSemanticTokensDelta: (*Server).semanticTokensDelta,
	MethodSemanticTokensRange: (*Server).semanticTokensRange,
}

var notificationHandlers = map[string]notificationHandler{
	MethodInitialized: (*Server).initialized,
	MethodDidOpen:     (*Server).didOpen,
	MethodDidChange:   (*Server).didChange,
	MethodDidClose:    (*Server).didClose,
}

func decodeParams[T any](raw json.RawMessage) (T, error) {
	var params T
	if len(raw) == 0 {
		return params, fmt.Errorf("%w: missing params", ErrInvalidParams)
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return params, nil
}

// hover shows the metadata of the class enclosing the cursor. The result is
// empty when the cursor is outside a class, the metadata is not loaded yet
// or the class is unknown.
func (s *Server) hover(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decodeParams[HoverParams](raw)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	pos := params.Position.Position
	offset := doc.Lines.ByteIndex(pos.Line, pos.Character)
	return Hover{Contents: s.describeClass(doc, offset)}, nil
}

func (s *Server) describeClass(doc *Document, offset uint32) string {
	match, ok := analysis.FindEnclosingClass(doc.Tree, offset)
	if !ok || !s.meta.Loaded() {
		return ""
	}

	name := match.Name.Text(doc.Text)
	class, ok := s.meta.Lookup(name)
	if !ok {
		s.logger.Debug("Unknown class", logging.FieldClass, name)
		return ""
	}
	text, err := meta.Render(class)
	if err != nil {
		s.logger.Warn("Cannot render class", logging.FieldClass, name, logging.FieldError, err)
		return ""
	}
	return text
}

// completion returns a fixed placeholder item.
func (s *Server) completion(context.Context, json.RawMessage) (any, error) {
	return []CompletionItem{{
		Label:  "HelloFromLSP",
		Kind:   CompletionItemKindFunction,
		Detail: "dummy completion",
	}}, nil
}

// definition never resolves anything.
func (s *Server) definition(context.Context, json.RawMessage) (any, error) {
	return []Location{}, nil
}

// formatting returns the document unchanged as a single edit covering all
// of it.
func (s *Server) formatting(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decodeParams[DocumentFormattingParams](raw)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return []TextEdit{{Range: doc.FullRange(), NewText: doc.Text}}, nil
}

func (s *Server) semanticTokensFull(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decodeParams[SemanticTokensParams](raw)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	tokens := s.tokens(doc, nil)
	semanticTokenCount.WithLabelValues(MethodSemanticTokensFull).Observe(float64(len(tokens)))
	id := s.session.StoreTokens(doc.URI, tokens)
	return SemanticTokens{ResultID: id, Data: semtok.Encode(tokens)}, nil
}

// semanticTokensDelta answers with edits against the previous result when
// the client still holds the latest one, and with a full result otherwise.
func (s *Server) semanticTokensDelta(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decodeParams[SemanticTokensDeltaParams](raw)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	tokens := s.tokens(doc, nil)
	semanticTokenCount.WithLabelValues(MethodSemanticTokensDelta).Observe(float64(len(tokens)))
	prev, ok := s.session.PreviousTokens(doc.URI, params.PreviousResultID)
	id := s.session.StoreTokens(doc.URI, tokens)
	if !ok {
		return SemanticTokens{ResultID: id, Data: semtok.Encode(tokens)}, nil
	}
	return SemanticTokensDelta{ResultID: id, Edits: semtok.Diff(prev, tokens)}, nil
}

func (s *Server) semanticTokensRange(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decodeParams[SemanticTokensRangeParams](raw)
	if err != nil {
		return nil, err
	}
	doc, err := s.session.Get(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	span := doc.Lines.SpanFromRange(params.Range)
	tokens := s.tokens(doc, &span)
	semanticTokenCount.WithLabelValues(MethodSemanticTokensRange).Observe(float64(len(tokens)))
	return SemanticTokens{Data: semtok.Encode(tokens)}, nil
}

func (s *Server) tokens(doc *Document, rng *syntax.Span) []semtok.Token {
	builder := semtok.NewBuilder()
	if s.standardTokens() {
		builder = builder.WithStandardFallback()
	}
	semtok.Collect(doc.Tree, doc.Lines, rng, builder)
	return builder.Build()
}

func (s *Server) standardTokens() bool {
	if opt := s.client.Options.StandardTokens; opt != nil {
		return *opt
	}
	return s.opts.StandardTokens
}

func (s *Server) initialized(context.Context, json.RawMessage) error {
	s.logger.Debug("Client initialized",
		logging.FieldClient, s.client.Name,
		"roots", strings.Join(s.client.WorkspaceRoots, ","),
	)
	return nil
}

func (s *Server) didOpen(_ context.Context, raw json.RawMessage) error {
	params, err := decodeParams[DidOpenTextDocumentParams](raw)
	if err != nil {
		return err
	}
	item := params.TextDocument
	doc := NewDocument(item.URI, item.Text).WithVersion(item.Version)
	s.session.Put(doc)
	openDocuments.Set(float64(s.session.Len()))
	return s.publishDiagnostics(doc)
}

// didChange replaces the document with the text of the first change. Only
// full-document sync is announced, so the first change carries the whole
// text.
func (s *Server) didChange(_ context.Context, raw json.RawMessage) error {
	params, err := decodeParams[DidChangeTextDocumentParams](raw)
	if err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	doc := NewDocument(params.TextDocument.URI, params.ContentChanges[0].Text).
		WithVersion(params.TextDocument.Version)
	s.session.Put(doc)
	return s.publishDiagnostics(doc)
}

func (s *Server) didClose(_ context.Context, raw json.RawMessage) error {
	params, err := decodeParams[DidCloseTextDocumentParams](raw)
	if err != nil {
		return err
	}
	if !s.opts.EvictOnClose {
		return nil
	}
	uri := params.TextDocument.URI
	if !s.session.Evict(uri) {
		return nil
	}
	openDocuments.Set(float64(s.session.Len()))
	return s.conn.Notify(MethodPublishDiagnostics, PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

// publishDiagnostics sends the type checker and parser findings for doc.
func (s *Server) publishDiagnostics(doc *Document) error {
	found := analysis.Diagnostics(doc.Text, doc.Tree, doc.ParseErrors, s.opts.MaxDiagnostics)
	diags := make([]Diagnostic, 0, len(found))
	for _, d := range found {
		diags = append(diags, Diagnostic{
			Range:    doc.Lines.Range(d.Span),
			Severity: int(d.Severity),
			Code:     d.Origin.String(),
			Source:   analysis.DiagnosticSource,
			Message:  d.Message,
		})
	}
	publishedDiagnostics.Observe(float64(len(diags)))

	version := doc.Version
	err := s.conn.Notify(MethodPublishDiagnostics, PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diags,
	})
	if err != nil {
		return fmt.Errorf("publish diagnostics: %w", err)
	}
	return nil
}
