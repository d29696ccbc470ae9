package lsp

import (
	"github.com/yaklabco/ritobin-lsp/pkg/lines"
	"github.com/yaklabco/ritobin-lsp/pkg/syntax"
)

// Document is an immutable parsed snapshot of an open text document. Edits
// replace the whole snapshot; a Document is never modified after creation,
// so readers may keep using one after the session moved on.
type Document struct {
	URI         DocumentURI
	Version     int32
	Text        string
	Tree        *syntax.Tree
	ParseErrors []syntax.Error
	Lines       *lines.LineNumbers
}

// NewDocument parses text into a new snapshot.
func NewDocument(uri DocumentURI, text string) *Document {
	tree, errs := syntax.Parse(text)
	return &Document{
		URI:         uri,
		Text:        text,
		Tree:        tree,
		ParseErrors: errs,
		Lines:       lines.New(text),
	}
}

// WithVersion returns doc tagged with the client's version number.
func (d *Document) WithVersion(version int32) *Document {
	d.Version = version
	return d
}

// FullRange returns the range covering the entire document.
func (d *Document) FullRange() lines.Range {
	return d.Lines.Range(syntax.NewSpan(0, d.Lines.Len()))
}
