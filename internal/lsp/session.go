package lsp

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yaklabco/ritobin-lsp/pkg/semtok"
)

// Session holds the documents the client has open. Every document is
// replaced wholesale on change; concurrent writers race and the last one to
// take the lock wins.
type Session struct {
	mu     sync.RWMutex
	docs   map[DocumentURI]*Document
	tokens map[DocumentURI]tokenResult
}

// tokenResult is the last semantic token result sent for a document, kept
// to answer delta requests.
type tokenResult struct {
	id     string
	tokens []semtok.Token
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		docs:   make(map[DocumentURI]*Document),
		tokens: make(map[DocumentURI]tokenResult),
	}
}

// Put stores doc, replacing any previous snapshot for its URI.
func (s *Session) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URI] = doc
}

// Get returns the current snapshot for uri.
func (s *Session) Get(uri DocumentURI) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotCached, uri)
	}
	return doc, nil
}

// Evict drops uri and its cached tokens. It reports whether the document was
// present.
func (s *Session) Evict(uri DocumentURI) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	delete(s.tokens, uri)
	return ok
}

// Len returns the number of open documents.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// URIs returns the URIs of all open documents, sorted.
func (s *Session) URIs() []DocumentURI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	return uris
}

// StoreTokens records tokens as the latest result for uri and returns the
// new result ID.
func (s *Session) StoreTokens(uri DocumentURI, tokens []semtok.Token) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[uri] = tokenResult{id: id, tokens: tokens}
	return id
}

// PreviousTokens returns the tokens stored for uri under resultID. It fails
// when the result was superseded or never existed.
func (s *Session) PreviousTokens(uri DocumentURI, resultID string) ([]semtok.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prev, ok := s.tokens[uri]
	if !ok || prev.id != resultID {
		return nil, false
	}
	return prev.tokens, true
}
