package importers

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrInvalidCover is returned when a custom cover is not a decodable image.
var ErrInvalidCover = errors.New("cover must be a PNG, JPEG, GIF, BMP or WebP image")

var formatExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"webp": ".webp",
}

// formatAliases lists extensions that are kept as given for each format.
var formatAliases = map[string][]string{
	"png":  {".png"},
	"jpeg": {".jpg", ".jpeg"},
	"gif":  {".gif"},
	"bmp":  {".bmp"},
	"webp": {".webp"},
}

// validateCover checks that path holds an image and returns the extension
// the copied cover should use: the file's own when it names the detected
// format, otherwise the format's canonical one.
func validateCover(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCover, err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidCover, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(formatAliases[format], ext) {
		return ext, nil
	}
	return formatExtensions[format], nil
}

// copyFile copies src to dst through a temporary file in dst's directory so
// a reader never sees a partial file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".cover-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
