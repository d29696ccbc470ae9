package lsp_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ritobin-lsp/internal/lsp"
	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
)

func TestNewDocument(t *testing.T) {
	t.Parallel()

	doc := lsp.NewDocument("file:///a.py", "a: u8 = 1\nb: string = \"x\"\n").WithVersion(4)

	assert.Equal(t, lsp.DocumentURI("file:///a.py"), doc.URI)
	assert.Equal(t, int32(4), doc.Version)
	require.NotNil(t, doc.Tree)
	assert.Empty(t, doc.ParseErrors)
	assert.Equal(t, lines.Range{
		Start: lines.Position{Line: 0, Character: 0},
		End:   lines.Position{Line: 2, Character: 0},
	}, doc.FullRange())
}

func TestNewDocument_KeepsParseErrors(t *testing.T) {
	t.Parallel()

	doc := lsp.NewDocument("file:///bad.py", "a u8")
	assert.NotEmpty(t, doc.ParseErrors)
	assert.NotNil(t, doc.Tree)
}

func TestSession_PutGetEvict(t *testing.T) {
	t.Parallel()

	session := lsp.NewSession()
	_, err := session.Get("file:///missing")
	require.ErrorIs(t, err, lsp.ErrDocumentNotCached)

	first := lsp.NewDocument("file:///a", "a: u8 = 1")
	session.Put(first)
	got, err := session.Get("file:///a")
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := lsp.NewDocument("file:///a", "a: u8 = 2")
	session.Put(second)
	got, err = session.Get("file:///a")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, "a: u8 = 1", first.Text, "old snapshot is unchanged")

	session.Put(lsp.NewDocument("file:///b", ""))
	assert.Equal(t, []lsp.DocumentURI{"file:///a", "file:///b"}, session.URIs())
	assert.Equal(t, 2, session.Len())

	assert.True(t, session.Evict("file:///a"))
	assert.False(t, session.Evict("file:///a"))
	_, err = session.Get("file:///a")
	assert.ErrorIs(t, err, lsp.ErrDocumentNotCached)
}

func TestSession_Tokens(t *testing.T) {
	t.Parallel()

	session := lsp.NewSession()
	tokens := []semtok.Token{{Length: 1, Type: semtok.TypeKeyword}}

	first := session.StoreTokens("file:///a", tokens)
	require.NotEmpty(t, first)

	got, ok := session.PreviousTokens("file:///a", first)
	require.True(t, ok)
	assert.Equal(t, tokens, got)

	second := session.StoreTokens("file:///a", nil)
	assert.NotEqual(t, first, second)
	_, ok = session.PreviousTokens("file:///a", first)
	assert.False(t, ok, "superseded result")

	_, ok = session.PreviousTokens("file:///b", second)
	assert.False(t, ok, "other document")

	session.Put(lsp.NewDocument("file:///a", ""))
	session.Evict("file:///a")
	_, ok = session.PreviousTokens("file:///a", second)
	assert.False(t, ok, "evicted")
}

func TestSession_ConcurrentWritersNeverMix(t *testing.T) {
	t.Parallel()

	const writers = 16
	session := lsp.NewSession()
	texts := make(map[string]bool, writers)
	for i := range writers {
		texts[fmt.Sprintf("a: u8 = %d\nb: string = \"%d\"\n", i, i)] = true
	}

	var wg sync.WaitGroup
	for text := range texts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Put(lsp.NewDocument("file:///a", text))
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doc, err := session.Get("file:///a"); err == nil {
				assert.True(t, texts[doc.Text])
				assert.Equal(t, uint32(len(doc.Text)), doc.Lines.Len())
			}
		}()
	}
	wg.Wait()

	doc, err := session.Get("file:///a")
	require.NoError(t, err)
	assert.True(t, texts[doc.Text])
	assert.Equal(t, uint32(len(doc.Text)), doc.Lines.Len(), "line index matches the text")
}
