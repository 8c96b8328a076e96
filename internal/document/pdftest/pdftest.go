// Package pdftest writes small but structurally valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Build returns a PDF with the given number of empty pages. When title is
// non-empty it is stored in the document information dictionary.
func Build(title string, pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// 1: catalog, 2: page tree, 3: info, 4..: pages
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i)
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	if title != "" {
		object(fmt.Sprintf("<< /Title (%s) /Producer (pdftest) >>", escape(title)))
	} else {
		object("<< /Producer (pdftest) >>")
	}
	for i := 0; i < pages; i++ {
		object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 3 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// BreakPage returns a copy of a Build result whose zero-based page object has
// an unterminated MediaBox array. Offsets stay valid, so the file still opens
// and only reading that page fails.
func BreakPage(data []byte, page int) []byte {
	out := bytes.Clone(data)
	header := []byte(fmt.Sprintf("\n%d 0 obj\n", 4+page))
	start := bytes.Index(out, header)
	if start < 0 {
		return out
	}
	body := out[start:]
	if i := bytes.Index(body, []byte("842] >>")); i >= 0 {
		copy(body[i:], "842 >>>")
	}
	return out
}

// Write stores Build(title, pages) at path.
func Write(path, title string, pages int) error {
	return os.WriteFile(path, Build(title, pages), 0o644)
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
