package document

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// PDFOpener opens PDF files and renders their pages with renderer.
type PDFOpener struct {
	renderer Renderer
}

func NewPDFOpener(renderer Renderer) *PDFOpener {
	return &PDFOpener{renderer: renderer}
}

func (o *PDFOpener) Open(path string) (Document, error) {
	return OpenPDF(path, o.renderer)
}

// PDF is an open PDF file. The underlying reader is not safe for concurrent
// use, so text access is serialized.
type PDF struct {
	path     string
	file     *os.File
	reader   *pdf.Reader
	pages    int
	title    string
	renderer Renderer

	mu sync.Mutex
}

// OpenPDF parses the file at path. Malformed input, including input that
// makes the parser panic, is reported as ErrUnreadableDocument.
func OpenPDF(path string, renderer Renderer) (doc *PDF, err error) {
	var file *os.File
	defer func() {
		if rec := recover(); rec != nil {
			if file != nil {
				file.Close()
			}
			doc = nil
			err = fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, path, rec)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		// pdf.Open hands back the open file even when parsing fails.
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableDocument, path, err)
	}

	pages := reader.NumPage()
	if pages < 1 {
		file.Close()
		return nil, fmt.Errorf("%w: %s has no pages", ErrUnreadableDocument, path)
	}

	return &PDF{
		path:     path,
		file:     file,
		reader:   reader,
		pages:    pages,
		title:    strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text()),
		renderer: renderer,
	}, nil
}

func (d *PDF) Path() string { return d.path }

func (d *PDF) PageCount() int { return d.pages }

func (d *PDF) MetadataTitle() string { return d.title }

// PageText extracts the plain text of a zero-based page. Page objects are
// parsed lazily, so a malformed page surfaces here as ErrUnreadableDocument.
func (d *PDF) PageText(page int) (text string, err error) {
	if page < 0 || page >= d.pages {
		return "", fmt.Errorf("page %d out of range [0, %d)", page, d.pages)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %s: page %d: %v", ErrUnreadableDocument, d.path, page, rec)
		}
	}()

	p := d.reader.Page(page + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d is missing", page)
	}
	return p.GetPlainText(nil)
}

func (d *PDF) RenderPage(ctx context.Context, page int) ([]byte, error) {
	if page < 0 || page >= d.pages {
		return nil, fmt.Errorf("page %d out of range [0, %d)", page, d.pages)
	}
	return d.renderer.Render(ctx, d, page)
}

func (d *PDF) Close() error {
	return d.file.Close()
}
