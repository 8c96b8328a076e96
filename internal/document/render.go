package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Renderer rasterizes one zero-based page of doc to PNG.
type Renderer interface {
	Render(ctx context.Context, doc *PDF, page int) ([]byte, error)
}

// NewRenderer picks a renderer for backend. "auto" prefers pdftoppm and
// falls back to the text preview when poppler is not installed.
func NewRenderer(backend string, dpi int) (Renderer, error) {
	switch backend {
	case config.RenderBackendPoppler:
		path, err := exec.LookPath("pdftoppm")
		if err != nil {
			return nil, fmt.Errorf("pdftoppm not found: %w", err)
		}
		return &PopplerRenderer{Binary: path, DPI: dpi}, nil
	case config.RenderBackendPreview:
		return &PreviewRenderer{DPI: dpi}, nil
	case config.RenderBackendAuto, "":
		if path, err := exec.LookPath("pdftoppm"); err == nil {
			return &PopplerRenderer{Binary: path, DPI: dpi}, nil
		}
		return &PreviewRenderer{DPI: dpi}, nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", backend)
	}
}

// PopplerRenderer shells out to pdftoppm (poppler-utils).
type PopplerRenderer struct {
	Binary string
	DPI    int
}

func (r *PopplerRenderer) Render(ctx context.Context, doc *PDF, page int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "bookshelf-render-*")
	if err != nil {
		return nil, fmt.Errorf("create render dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	n := strconv.Itoa(page + 1)
	cmd := exec.CommandContext(ctx, r.Binary,
		"-png", "-r", strconv.Itoa(r.DPI), "-f", n, "-l", n, "-singlefile",
		doc.Path(), prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page %d: %w", page, err)
	}
	return data, nil
}

// PreviewRenderer draws the page's extracted text on an A4-sized white
// canvas. It needs no external tools; pages without a text layer come out
// blank apart from the page number.
type PreviewRenderer struct {
	DPI int
}

const (
	a4WidthPt  = 595
	a4HeightPt = 842
	lineHeight = 15
	glyphWidth = 7 // basicfont.Face7x13 advance
)

func (r *PreviewRenderer) Render(ctx context.Context, doc *PDF, page int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := doc.PageText(page)
	if errors.Is(err, ErrUnreadableDocument) {
		return nil, err
	}
	if err != nil {
		text = ""
	}
	return r.RenderText(text, page)
}

// RenderText lays out text as a preview of the zero-based page.
func (r *PreviewRenderer) RenderText(text string, page int) ([]byte, error) {
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 72
	}
	width := a4WidthPt * dpi / 72
	height := a4HeightPt * dpi / 72
	margin := width / 12

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13}
	y := margin + lineHeight
	for _, line := range wrapText(text, (width-2*margin)/glyphWidth) {
		if y > height-margin-2*lineHeight {
			break
		}
		d.Dot = fixed.P(margin, y)
		d.DrawString(line)
		y += lineHeight
	}

	footer := fmt.Sprintf("- %d -", page+1)
	d.Dot = fixed.P((width-len(footer)*glyphWidth)/2, height-margin/2)
	d.DrawString(footer)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapText splits text into lines of at most width runes, breaking on spaces.
// Words longer than width are cut.
func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, paragraph := range strings.Split(strings.ToValidUTF8(text, ""), "\n") {
		var line []rune
		for _, word := range strings.Fields(paragraph) {
			w := []rune(word)
			for len(w) > width {
				if len(line) > 0 {
					lines = append(lines, string(line))
					line = nil
				}
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			switch {
			case len(line) == 0:
				line = w
			case len(line)+1+len(w) <= width:
				line = append(append(line, ' '), w...)
			default:
				lines = append(lines, string(line))
				line = w
			}
		}
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines
}
