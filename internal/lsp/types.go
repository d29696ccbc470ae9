package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
)

// Method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"

	MethodHover               = "textDocument/hover"
	MethodCompletion          = "textDocument/completion"
	MethodDefinition          = "textDocument/definition"
	MethodFormatting          = "textDocument/formatting"
	MethodSemanticTokensFull  = "textDocument/semanticTokens/full"
	MethodSemanticTokensDelta = "textDocument/semanticTokens/full/delta"
	MethodSemanticTokensRange = "textDocument/semanticTokens/range"

	MethodDidOpen            = "textDocument/didOpen"
	MethodDidChange          = "textDocument/didChange"
	MethodDidClose           = "textDocument/didClose"
	MethodPublishDiagnostics = "textDocument/publishDiagnostics"
	MethodServerStatus       = "experimental/serverStatus"
)

// DocumentURI identifies a text document.
type DocumentURI string

// TextDocumentIdentifier names a document.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier names a specific version of a document.
type VersionedTextDocumentIdentifier struct {
	URI     DocumentURI `json:"uri"`
	Version int32       `json:"version"`
}

// TextDocumentItem is a document transferred on open.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

// ClientInfo describes the editor.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// WorkspaceFolder is a root folder opened in the editor.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// InitializationOptions are the server-specific options a client may pass
// with initialize.
type InitializationOptions struct {
	MetaPath       string `json:"metaPath,omitempty"`
	StandardTokens *bool  `json:"standardTokens,omitempty"`
}

// InitializeParams are the parameters of the initialize request.
type InitializeParams struct {
	ProcessID             *int                   `json:"processId"`
	ClientInfo            *ClientInfo            `json:"clientInfo,omitempty"`
	RootURI               *string                `json:"rootUri"`
	RootPath              *string                `json:"rootPath,omitempty"`
	Capabilities          json.RawMessage        `json:"capabilities,omitempty"`
	InitializationOptions *InitializationOptions `json:"initializationOptions,omitempty"`
	WorkspaceFolders      []WorkspaceFolder      `json:"workspaceFolders,omitempty"`
}

// ServerInfo names the server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the response to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// TextDocumentSyncKind selects how document changes are transferred.
type TextDocumentSyncKind int

// TextDocumentSyncFull transfers the whole document on every change.
const TextDocumentSyncFull TextDocumentSyncKind = 1

// TextDocumentSyncOptions announces the document sync behavior.
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose"`
	Change    TextDocumentSyncKind `json:"change"`
}

// CompletionOptions announces completion support.
type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// SemanticTokensFullOptions announces delta support for full requests.
type SemanticTokensFullOptions struct {
	Delta bool `json:"delta"`
}

// SemanticTokensOptions announces semantic token support.
type SemanticTokensOptions struct {
	Legend semtok.Legend              `json:"legend"`
	Range  bool                       `json:"range"`
	Full   *SemanticTokensFullOptions `json:"full,omitempty"`
}

// ServerCapabilities lists what the server supports.
type ServerCapabilities struct {
	TextDocumentSync           TextDocumentSyncOptions `json:"textDocumentSync"`
	HoverProvider              bool                    `json:"hoverProvider"`
	CompletionProvider         *CompletionOptions      `json:"completionProvider,omitempty"`
	DefinitionProvider         bool                    `json:"definitionProvider"`
	DocumentFormattingProvider bool                    `json:"documentFormattingProvider"`
	SemanticTokensProvider     *SemanticTokensOptions  `json:"semanticTokensProvider,omitempty"`
}

// PositionOrRange accepts either a position or a range, as some clients send
// a selection for hover. A range resolves to its start.
type PositionOrRange struct {
	lines.Position
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PositionOrRange) UnmarshalJSON(data []byte) error {
	var probe struct {
		Start *lines.Position `json:"start"`
		Line  *uint32         `json:"line"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}
	switch {
	case probe.Start != nil:
		p.Position = *probe.Start
	case probe.Line != nil:
		return json.Unmarshal(data, &p.Position)
	default:
		return fmt.Errorf("decode position: neither position nor range: %s", data)
	}
	return nil
}

// HoverParams are the parameters of textDocument/hover.
type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     PositionOrRange        `json:"position"`
}

// Hover is the hover result. Contents is plain text.
type Hover struct {
	Contents string       `json:"contents"`
	Range    *lines.Range `json:"range,omitempty"`
}

// TextDocumentPositionParams address a position in a document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     lines.Position         `json:"position"`
}

// CompletionItemKind classifies completion items.
type CompletionItemKind int

// CompletionItemKindFunction marks a function completion.
const CompletionItemKindFunction CompletionItemKind = 3

// CompletionItem is a single completion proposal.
type CompletionItem struct {
	Label  string             `json:"label"`
	Kind   CompletionItemKind `json:"kind,omitempty"`
	Detail string             `json:"detail,omitempty"`
}

// Location is a range inside a document.
type Location struct {
	URI   DocumentURI `json:"uri"`
	Range lines.Range `json:"range"`
}

// FormattingOptions are the client's formatting preferences.
type FormattingOptions struct {
	TabSize      uint32 `json:"tabSize"`
	InsertSpaces bool   `json:"insertSpaces"`
}

// DocumentFormattingParams are the parameters of textDocument/formatting.
type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Options      FormattingOptions      `json:"options"`
}

// TextEdit replaces a range of a document.
type TextEdit struct {
	Range   lines.Range `json:"range"`
	NewText string      `json:"newText"`
}

// SemanticTokensParams are the parameters of semanticTokens/full.
type SemanticTokensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// SemanticTokensDeltaParams are the parameters of semanticTokens/full/delta.
type SemanticTokensDeltaParams struct {
	TextDocument     TextDocumentIdentifier `json:"textDocument"`
	PreviousResultID string                 `json:"previousResultId"`
}

// SemanticTokensRangeParams are the parameters of semanticTokens/range.
type SemanticTokensRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        lines.Range            `json:"range"`
}

// SemanticTokens is a full or ranged token result.
type SemanticTokens struct {
	ResultID string   `json:"resultId,omitempty"`
	Data     []uint32 `json:"data"`
}

// SemanticTokensDelta is a delta against a previous result.
type SemanticTokensDelta struct {
	ResultID string        `json:"resultId,omitempty"`
	Edits    []semtok.Edit `json:"edits"`
}

// DidOpenTextDocumentParams are the parameters of didOpen.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent carries the new text of a document. Only
// full-document changes are supported, so Range is ignored.
type TextDocumentContentChangeEvent struct {
	Range *lines.Range `json:"range,omitempty"`
	Text  string       `json:"text"`
}

// DidChangeTextDocumentParams are the parameters of didChange.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams are the parameters of didClose.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// Diagnostic is a diagnostic as published to the client.
type Diagnostic struct {
	Range    lines.Range `json:"range"`
	Severity int         `json:"severity,omitempty"`
	Code     string      `json:"code,omitempty"`
	Source   string      `json:"source,omitempty"`
	Message  string      `json:"message"`
}

// PublishDiagnosticsParams are the parameters of publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         DocumentURI  `json:"uri"`
	Version     *int32       `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Health is the server health reported in status notifications.
type Health string

// Health values.
const (
	HealthOK      Health = "ok"
	HealthWarning Health = "warning"
	HealthError   Health = "error"
)

// ServerStatusParams are the parameters of experimental/serverStatus.
type ServerStatusParams struct {
	Health    Health `json:"health"`
	Quiescent bool   `json:"quiescent"`
	Message   string `json:"message,omitempty"`
}
