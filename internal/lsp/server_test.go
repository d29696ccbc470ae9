package lsp_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/internal/lsp"
	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/meta"
	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
)

const (
	testURI     = lsp.DocumentURI("file:///workspace/skin.py")
	dumpPath    = "../../pkg/meta/testdata/dump.json"
	waitTimeout = 5 * time.Second
)

// testClient drives a Server over in-memory pipes.
type testClient struct {
	t       *testing.T
	server  *lsp.Server
	toSrv   *io.PipeWriter
	msgs    chan *lsp.Message
	backlog []*lsp.Message
	served  chan error
	nextID  int
}

func newTestClient(t *testing.T, opts lsp.Options) *testClient {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	srvIn, toSrv := io.Pipe()
	fromSrv, srvOut := io.Pipe()

	c := &testClient{
		t:      t,
		server: lsp.NewServer(opts),
		toSrv:  toSrv,
		msgs:   make(chan *lsp.Message, 1024),
		served: make(chan error, 1),
	}

	go func() {
		err := c.server.Serve(context.Background(), srvIn, srvOut)
		_ = srvOut.Close()
		c.served <- err
	}()
	go func() {
		defer close(c.msgs)
		reader := bufio.NewReader(fromSrv)
		for {
			msg, err := lsp.ReadMessage(reader)
			if err != nil {
				return
			}
			c.msgs <- msg
		}
	}()

	t.Cleanup(func() {
		_ = toSrv.Close()
		select {
		case <-c.served:
		case <-time.After(waitTimeout):
			t.Error("server did not stop")
		}
	})
	return c
}

func (c *testClient) send(v any) {
	c.t.Helper()
	require.NoError(c.t, lsp.WriteMessage(c.toSrv, v))
}

type clientRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// request sends a request and returns its ID.
func (c *testClient) request(method string, params any) int {
	c.t.Helper()
	c.nextID++
	c.send(clientRequest{JSONRPC: lsp.JSONRPCVersion, ID: c.nextID, Method: method, Params: params})
	return c.nextID
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.send(lsp.NewNotification(method, params))
}

// next returns the first message matching match, keeping the others for
// later calls.
func (c *testClient) next(match func(*lsp.Message) bool) *lsp.Message {
	c.t.Helper()
	for i, msg := range c.backlog {
		if match(msg) {
			c.backlog = append(c.backlog[:i], c.backlog[i+1:]...)
			return msg
		}
	}

	timeout := time.After(waitTimeout)
	for {
		select {
		case msg, ok := <-c.msgs:
			require.True(c.t, ok, "server output closed")
			if match(msg) {
				return msg
			}
			c.backlog = append(c.backlog, msg)
		case <-timeout:
			c.t.Fatal("timed out waiting for message")
			return nil
		}
	}
}

func (c *testClient) response(id int) *lsp.Message {
	c.t.Helper()
	want := json.RawMessage(jsonString(id))
	return c.next(func(m *lsp.Message) bool {
		return m.IsResponse() && string(m.ID) == string(want)
	})
}

func (c *testClient) notification(method string) *lsp.Message {
	c.t.Helper()
	return c.next(func(m *lsp.Message) bool {
		return m.IsNotification() && m.Method == method
	})
}

// call sends a request and decodes its successful result into out.
func (c *testClient) call(method string, params, out any) {
	c.t.Helper()
	resp := c.response(c.request(method, params))
	require.Nil(c.t, resp.Error, "unexpected error: %v", resp.Error)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(resp.Result, out))
	}
}

// callError sends a request that is expected to fail and returns the error.
func (c *testClient) callError(method string, params any) *lsp.ResponseError {
	c.t.Helper()
	resp := c.response(c.request(method, params))
	require.NotNil(c.t, resp.Error)
	return resp.Error
}

func (c *testClient) initialize(params lsp.InitializeParams) lsp.InitializeResult {
	c.t.Helper()
	var result lsp.InitializeResult
	c.call(lsp.MethodInitialize, params, &result)
	c.notify(lsp.MethodInitialized, struct{}{})
	return result
}

func (c *testClient) open(text string) lsp.PublishDiagnosticsParams {
	c.t.Helper()
	c.notify(lsp.MethodDidOpen, lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: testURI, LanguageID: "ritobin", Version: 1, Text: text},
	})
	return c.diagnostics()
}

func (c *testClient) diagnostics() lsp.PublishDiagnosticsParams {
	c.t.Helper()
	var params lsp.PublishDiagnosticsParams
	require.NoError(c.t, json.Unmarshal(c.notification(lsp.MethodPublishDiagnostics).Params, &params))
	return params
}

func (c *testClient) wait() error {
	c.t.Helper()
	select {
	case err := <-c.served:
		c.served <- err
		return err
	case <-time.After(waitTimeout):
		c.t.Fatal("server did not stop")
		return nil
	}
}

func jsonString(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func hoverParams(line, char uint32) map[string]any {
	return map[string]any{
		"textDocument": lsp.TextDocumentIdentifier{URI: testURI},
		"position":     lines.Position{Line: line, Character: char},
	}
}

func loadedMeta(t *testing.T) *meta.Service {
	t.Helper()
	service := meta.NewService(log.New(io.Discard))
	require.NoError(t, service.Load(dumpPath))
	return service
}

func TestServer_Initialize(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{Version: "1.2.3"})
	result := c.initialize(lsp.InitializeParams{
		ClientInfo: &lsp.ClientInfo{Name: "Neovim", Version: "0.10.0"},
	})

	assert.Equal(t, &lsp.ServerInfo{Name: lsp.ServerName, Version: "1.2.3"}, result.ServerInfo)
	caps := result.Capabilities
	assert.Equal(t, lsp.TextDocumentSyncFull, caps.TextDocumentSync.Change)
	assert.True(t, caps.TextDocumentSync.OpenClose)
	assert.True(t, caps.HoverProvider)
	assert.True(t, caps.DefinitionProvider)
	assert.True(t, caps.DocumentFormattingProvider)
	require.NotNil(t, caps.CompletionProvider)
	require.NotNil(t, caps.SemanticTokensProvider)
	assert.True(t, caps.SemanticTokensProvider.Range)
	assert.True(t, caps.SemanticTokensProvider.Full.Delta)
	assert.Equal(t, semtok.NewLegend(), caps.SemanticTokensProvider.Legend)

	var status lsp.ServerStatusParams
	require.NoError(t, json.Unmarshal(c.notification(lsp.MethodServerStatus).Params, &status))
	assert.Equal(t, lsp.ServerStatusParams{Health: lsp.HealthOK, Quiescent: true}, status)

	assert.True(t, c.server.Client().IsNeovim())
	assert.Equal(t, "0.10.0", c.server.Client().Version)
}

func TestServer_RequestBeforeInitialize(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	rerr := c.callError(lsp.MethodHover, hoverParams(0, 0))
	assert.Equal(t, lsp.CodeServerNotInitialized, rerr.Code)

	c.initialize(lsp.InitializeParams{})
}

func TestServer_ExitBeforeInitialize(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.notify(lsp.MethodExit, nil)
	assert.ErrorIs(t, c.wait(), lsp.ErrExitBeforeInitialize)
}

func TestServer_ShutdownExit(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})

	resp := c.response(c.request(lsp.MethodShutdown, nil))
	assert.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))

	rerr := c.callError(lsp.MethodCompletion, hoverParams(0, 0))
	assert.Equal(t, lsp.CodeInvalidRequest, rerr.Code)

	c.notify(lsp.MethodExit, nil)
	assert.NoError(t, c.wait())
}

func TestServer_ExitWithoutShutdown(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})
	c.notify(lsp.MethodExit, nil)
	assert.ErrorIs(t, c.wait(), lsp.ErrExitWithoutShutdown)
}

func TestServer_InputClosed(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})
	require.NoError(t, c.toSrv.Close())
	assert.True(t, errors.Is(c.wait(), lsp.ErrConnClosed))
}

func TestServer_MalformedMessage(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})

	_, err := io.WriteString(c.toSrv, frame(`{"jsonrpc":`))
	require.NoError(t, err)

	resp := c.next(func(m *lsp.Message) bool { return m.Error != nil })
	assert.Equal(t, lsp.CodeParseError, resp.Error.Code)
	assert.Equal(t, "null", string(resp.ID))

	var items []lsp.CompletionItem
	c.call(lsp.MethodCompletion, hoverParams(0, 0), &items)
	assert.Len(t, items, 1)
}

func TestServer_Diagnostics(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{MaxDiagnostics: 20})
	c.initialize(lsp.InitializeParams{})

	published := c.open("a: foo = 1\nb: string = 5\n")
	assert.Equal(t, testURI, published.URI)
	require.NotNil(t, published.Version)
	assert.Equal(t, int32(1), *published.Version)
	require.Len(t, published.Diagnostics, 2)

	first := published.Diagnostics[0]
	assert.Equal(t, "unknown type 'foo'", first.Message)
	assert.Equal(t, "ritobin-lsp", first.Source)
	assert.Equal(t, 1, first.Severity)
	assert.Equal(t, "typecheck", first.Code)
	assert.Equal(t, lines.Range{
		Start: lines.Position{Line: 0, Character: 3},
		End:   lines.Position{Line: 0, Character: 6},
	}, first.Range)

	second := published.Diagnostics[1]
	assert.Equal(t, "type of bin value must be string", second.Message)
	assert.Equal(t, uint32(1), second.Range.Start.Line)

	c.notify(lsp.MethodDidChange, lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{URI: testURI, Version: 2},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{
			{Text: "a: u8 = 1\n"},
			{Text: "ignored: foo = 1\n"},
		},
	})
	published = c.diagnostics()
	assert.Equal(t, int32(2), *published.Version)
	assert.Empty(t, published.Diagnostics)

	doc, err := c.server.Session().Get(testURI)
	require.NoError(t, err)
	assert.Equal(t, "a: u8 = 1\n", doc.Text)
}

func TestServer_DiagnosticsParseErrors(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})

	published := c.open("a u8")
	require.NotEmpty(t, published.Diagnostics)
	assert.Equal(t, "parse", published.Diagnostics[0].Code)
	assert.Equal(t, "Missing ':' for entry - got name", published.Diagnostics[0].Message)
}

func TestServer_Hover(t *testing.T) {
	t.Parallel()

	service := loadedMeta(t)
	c := newTestClient(t, lsp.Options{Meta: service})
	c.initialize(lsp.InitializeParams{})
	c.open("skin: embed = SkinCharacterDataProperties {\n  mesh: embed = SkinMeshDataProperties {\n    x: u8 = 1\n  }\n  y: u8 = 2\n}\nz: u8 = 3\n")

	render := func(name string) string {
		class, ok := service.Lookup(name)
		require.True(t, ok)
		text, err := meta.Render(class)
		require.NoError(t, err)
		return text
	}

	tests := []struct {
		name string
		line uint32
		char uint32
		want string
	}{
		{name: "outer class body", line: 4, char: 2, want: render("SkinCharacterDataProperties")},
		{name: "nested class", line: 2, char: 4, want: render("SkinMeshDataProperties")},
		{name: "after nested class", line: 4, char: 8, want: render("SkinCharacterDataProperties")},
		{name: "outside any class", line: 6, char: 0, want: ""},
		{name: "whitespace", line: 1, char: 0, want: ""},
	}

	for _, tt := range tests {
		var hover lsp.Hover
		c.call(lsp.MethodHover, hoverParams(tt.line, tt.char), &hover)
		assert.Equal(t, tt.want, hover.Contents, tt.name)
	}
}

func TestServer_HoverRangePosition(t *testing.T) {
	t.Parallel()

	service := loadedMeta(t)
	c := newTestClient(t, lsp.Options{Meta: service})
	c.initialize(lsp.InitializeParams{})
	c.open("skin: embed = SkinCharacterDataProperties {\n  y: u8 = 2\n}\n")

	var hover lsp.Hover
	c.call(lsp.MethodHover, map[string]any{
		"textDocument": lsp.TextDocumentIdentifier{URI: testURI},
		"position": lines.Range{
			Start: lines.Position{Line: 1, Character: 2},
			End:   lines.Position{Line: 1, Character: 3},
		},
	}, &hover)
	assert.Contains(t, hover.Contents, "class:")
}

func TestServer_HoverUnknownClassAndUnloadedMeta(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{Meta: loadedMeta(t)})
	c.initialize(lsp.InitializeParams{})
	c.open("a: embed = NoSuchClass {\n  y: u8 = 2\n}\n")

	var hover lsp.Hover
	c.call(lsp.MethodHover, hoverParams(1, 2), &hover)
	assert.Empty(t, hover.Contents)

	unloaded := newTestClient(t, lsp.Options{})
	unloaded.initialize(lsp.InitializeParams{})
	unloaded.open("skin: embed = SkinCharacterDataProperties {\n  y: u8 = 2\n}\n")
	unloaded.call(lsp.MethodHover, hoverParams(1, 2), &hover)
	assert.Empty(t, hover.Contents)
}

func TestServer_MetaPathFromClient(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{
		InitializationOptions: &lsp.InitializationOptions{MetaPath: dumpPath},
	})

	require.Eventually(t, c.server.Meta().Loaded, waitTimeout, 10*time.Millisecond)
	assert.Equal(t, "14.23.1", c.server.Meta().Version())
}

func TestServer_RequestErrors(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})

	tests := []struct {
		name   string
		method string
		params any
		code   int
	}{
		{name: "document not open", method: lsp.MethodHover, params: hoverParams(0, 0), code: lsp.CodeRequestFailed},
		{name: "formatting not open", method: lsp.MethodFormatting, params: hoverParams(0, 0), code: lsp.CodeRequestFailed},
		{name: "missing params", method: lsp.MethodSemanticTokensFull, params: nil, code: lsp.CodeInvalidParams},
		{name: "bad params", method: lsp.MethodHover, params: []int{1}, code: lsp.CodeInvalidParams},
		{name: "unknown method", method: "textDocument/rename", params: struct{}{}, code: lsp.CodeMethodNotFound},
	}

	for _, tt := range tests {
		rerr := c.callError(tt.method, tt.params)
		assert.Equal(t, tt.code, rerr.Code, tt.name)
	}
}

func TestServer_Stubs(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})

	var items []lsp.CompletionItem
	c.call(lsp.MethodCompletion, hoverParams(0, 0), &items)
	assert.Equal(t, []lsp.CompletionItem{{
		Label:  "HelloFromLSP",
		Kind:   lsp.CompletionItemKindFunction,
		Detail: "dummy completion",
	}}, items)

	var locations []lsp.Location
	resp := c.response(c.request(lsp.MethodDefinition, hoverParams(0, 0)))
	assert.Equal(t, "[]", string(resp.Result))
	require.NoError(t, json.Unmarshal(resp.Result, &locations))
	assert.Empty(t, locations)
}

func TestServer_Formatting(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})
	text := "a: u8 = 1\nb: string = \"é\""
	c.open(text)

	var edits []lsp.TextEdit
	c.call(lsp.MethodFormatting, lsp.DocumentFormattingParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
		Options:      lsp.FormattingOptions{TabSize: 4, InsertSpaces: true},
	}, &edits)

	require.Len(t, edits, 1)
	assert.Equal(t, text, edits[0].NewText)
	assert.Equal(t, lines.Range{
		Start: lines.Position{Line: 0, Character: 0},
		End:   lines.Position{Line: 1, Character: 15},
	}, edits[0].Range)
}

func TestServer_SemanticTokens(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{})
	c.open("a: u8 = 1\nb: u8 = 2\n")
	docParams := lsp.SemanticTokensParams{TextDocument: lsp.TextDocumentIdentifier{URI: testURI}}

	var full lsp.SemanticTokens
	c.call(lsp.MethodSemanticTokensFull, docParams, &full)
	require.NotEmpty(t, full.ResultID)
	tokens := semtok.Decode(full.Data)
	require.Len(t, tokens, 10)
	assert.Equal(t, semtok.Token{Length: 1, Type: semtok.TypeKeyword}, tokens[0])
	assert.Equal(t, semtok.Token{DeltaLine: 1, Length: 1, Type: semtok.TypeKeyword}, tokens[5])

	var ranged lsp.SemanticTokens
	c.call(lsp.MethodSemanticTokensRange, lsp.SemanticTokensRangeParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
		Range: lines.Range{
			Start: lines.Position{Line: 1, Character: 0},
			End:   lines.Position{Line: 1, Character: 9},
		},
	}, &ranged)
	assert.Empty(t, ranged.ResultID)
	rangeTokens := semtok.Decode(ranged.Data)
	require.Len(t, rangeTokens, 5)
	assert.Equal(t, uint32(1), rangeTokens[0].DeltaLine, "positions stay absolute to the document")

	c.notify(lsp.MethodDidChange, lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{URI: testURI, Version: 2},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "a: u8 = 1\nbb: u8 = 2\n"}},
	})
	c.diagnostics()

	var delta lsp.SemanticTokensDelta
	c.call(lsp.MethodSemanticTokensDelta, lsp.SemanticTokensDeltaParams{
		TextDocument:     lsp.TextDocumentIdentifier{URI: testURI},
		PreviousResultID: full.ResultID,
	}, &delta)
	require.NotEmpty(t, delta.ResultID)
	assert.NotEqual(t, full.ResultID, delta.ResultID)
	require.Len(t, delta.Edits, 1)

	var next lsp.SemanticTokens
	c.call(lsp.MethodSemanticTokensFull, docParams, &next)
	assert.Equal(t, next.Data, semtok.Apply(full.Data, delta.Edits))

	var stale lsp.SemanticTokens
	c.call(lsp.MethodSemanticTokensDelta, lsp.SemanticTokensDeltaParams{
		TextDocument:     lsp.TextDocumentIdentifier{URI: testURI},
		PreviousResultID: full.ResultID,
	}, &stale)
	assert.Equal(t, next.Data, stale.Data, "stale result id yields a full result")
}

func TestServer_StandardTokens(t *testing.T) {
	t.Parallel()

	standard := true
	c := newTestClient(t, lsp.Options{})
	c.initialize(lsp.InitializeParams{
		InitializationOptions: &lsp.InitializationOptions{StandardTokens: &standard},
	})
	c.open("a: u8 = 1\n")

	var full lsp.SemanticTokens
	c.call(lsp.MethodSemanticTokensFull, lsp.SemanticTokensParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
	}, &full)
	for _, tok := range semtok.Decode(full.Data) {
		assert.True(t, tok.Type.IsStandard(), "token type %s", tok.Type)
	}
}

func TestServer_DidClose(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{EvictOnClose: true})
	c.initialize(lsp.InitializeParams{})
	c.open("a: foo = 1\n")

	c.notify(lsp.MethodDidClose, lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
	})
	cleared := c.diagnostics()
	assert.Empty(t, cleared.Diagnostics)

	rerr := c.callError(lsp.MethodHover, hoverParams(0, 0))
	assert.Equal(t, lsp.CodeRequestFailed, rerr.Code)
}

func TestServer_InterleavedEditsThenHover(t *testing.T) {
	t.Parallel()

	service := loadedMeta(t)
	c := newTestClient(t, lsp.Options{Meta: service})
	c.initialize(lsp.InitializeParams{})
	c.open("x: u8 = 0\n")

	texts := map[string]bool{
		"skin: embed = SkinCharacterDataProperties {\n  y: u8 = 2\n}\n": true,
		"mesh: embed = SkinMeshDataProperties {\n  y: u8 = 2\n}\n":      true,
	}
	version := int32(1)
	for text := range texts {
		version++
		c.notify(lsp.MethodDidChange, lsp.DidChangeTextDocumentParams{
			TextDocument:   lsp.VersionedTextDocumentIdentifier{URI: testURI, Version: version},
			ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: text}},
		})
	}
	c.diagnostics()
	c.diagnostics()

	var hover lsp.Hover
	c.call(lsp.MethodHover, hoverParams(1, 2), &hover)

	doc, err := c.server.Session().Get(testURI)
	require.NoError(t, err)
	assert.True(t, texts[doc.Text], "document holds one complete submitted text")

	name := "SkinCharacterDataProperties"
	if strings.HasPrefix(doc.Text, "mesh") {
		name = "SkinMeshDataProperties"
	}
	class, ok := service.Lookup(name)
	require.True(t, ok)
	want, err := meta.Render(class)
	require.NoError(t, err)
	assert.Equal(t, want, hover.Contents)
}

func TestServer_BoundedWorkers(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, lsp.Options{MaxWorkers: 1})
	c.initialize(lsp.InitializeParams{})
	c.open("a: u8 = 1\n")

	ids := make([]int, 0, 8)
	for range 8 {
		ids = append(ids, c.request(lsp.MethodCompletion, hoverParams(0, 0)))
	}
	for _, id := range ids {
		assert.Nil(t, c.response(id).Error)
	}
}
