package covers

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxCoverBytes bounds a single download.
const maxCoverBytes = 10 << 20

var ErrNotRemote = errors.New("cover URL must be http or https")

// Cache keeps local copies of remote wishlist covers. A URL is downloaded
// once; later fetches return the existing file.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string, logger *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// IsRemote reports whether coverURL points at an http(s) resource.
func IsRemote(coverURL string) bool {
	u, err := url.Parse(coverURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch returns the local path of the cover at coverURL, downloading it into
// <cache dir>/cover_<hash><ext> on first use.
func (c *Cache) Fetch(ctx context.Context, coverURL string) (string, error) {
	if !IsRemote(coverURL) {
		return "", ErrNotRemote
	}

	cachePath := filepath.Join(c.cacheDir, c.coverFilename(coverURL))
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, coverURL, cachePath); err != nil {
		return "", err
	}
	c.logger.Debug("cover cached", zap.String("url", coverURL), zap.String("path", cachePath))
	return cachePath, nil
}

// coverFilename names a cached cover after the URL hash, keeping the URL's
// image extension when it has one.
func (c *Cache) coverFilename(coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))

	ext := ".jpg"
	if u, err := url.Parse(coverURL); err == nil {
		switch e := strings.ToLower(path.Ext(u.Path)); e {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
			ext = e
		}
	}
	return fmt.Sprintf("cover_%x%s", hash[:8], ext)
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, coverURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return err
	}
	if n > maxCoverBytes {
		return fmt.Errorf("cover larger than %d bytes", maxCoverBytes)
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
