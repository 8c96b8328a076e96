package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a user-provided label (a category name, a report
// title) safe to embed in a file name.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Leave room for a timestamp suffix and extension
	if len(filename) > 100 {
		filename = strings.TrimSpace(filename[:100])
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// KnownBookExtensions contains file extensions commonly used for e-books.
// Compound extensions come before their suffixes.
var KnownBookExtensions = []string{
	".fb2.zip",
	".fb2",
	".epub",
	".pdf",
	".txt",
	".djvu",
}

// TitleFromFilename derives a fallback book title from a file path: the base
// name without its extension.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range KnownBookExtensions {
		if strings.HasSuffix(lower, ext) && len(base) > len(ext) {
			return strings.TrimSpace(base[:len(base)-len(ext)])
		}
	}
	if ext := filepath.Ext(base); ext != "" && len(base) > len(ext) {
		base = base[:len(base)-len(ext)]
	}
	return strings.TrimSpace(base)
}
