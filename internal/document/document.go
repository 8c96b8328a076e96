// Package document opens imported files and rasterizes their pages.
//
// PDF structure (page count, metadata, page text) is read with
// github.com/ledongthuc/pdf. Rasterization is delegated to a Renderer:
// poppler's pdftoppm when it is installed, otherwise a text preview drawn
// with golang.org/x/image fonts.
package document

import (
	"context"
	"errors"
)

// ErrUnreadableDocument wraps every failure to open or parse an input file.
var ErrUnreadableDocument = errors.New("document could not be read")

// Document is an opened multi-page file. Page numbers are zero-based.
type Document interface {
	PageCount() int
	// MetadataTitle returns the embedded title, or "" when there is none.
	MetadataTitle() string
	// RenderPage returns the page as PNG bytes.
	RenderPage(ctx context.Context, page int) ([]byte, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}
