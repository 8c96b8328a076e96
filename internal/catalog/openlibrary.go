package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const userAgent = "Bookshelf/1.0 (https://github.com/mrlokans/bookshelf)"

// maxTags caps how many subjects an entry carries.
const maxTags = 10

var ErrEmptyQuery = errors.New("search query is required")

// Entry is one catalog search result, ready to be added to a wishlist.
type Entry struct {
	Title     string
	CoverURL  string
	DetailURL string
	ReadURL   string // empty unless the book can be read online
	Author    string
	Genre     string
	Rating    float64
	Tags      []string
	Year      int
	ISBN      string
}

// Client searches the OpenLibrary catalog.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
	logger      *zap.Logger
}

type Options struct {
	BaseURL      string
	CoversURL    string
	Timeout      time.Duration
	RateInterval time.Duration
	Logger       *zap.Logger
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if since := time.Since(r.lastCall); since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

// NewClient creates a rate limited OpenLibrary client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openlibrary.org"
	}
	if opts.CoversURL == "" {
		opts.CoversURL = "https://covers.openlibrary.org"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		coversURL:   strings.TrimRight(opts.CoversURL, "/"),
		rateLimiter: newRateLimiter(opts.RateInterval),
		logger:      opts.Logger,
	}
}

// Search returns up to limit catalog entries matching query. A query that is
// a bare ISBN is searched by ISBN.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	if isbn := normalizeISBN(query); isbn != "" {
		params.Set("isbn", isbn)
	} else {
		params.Set("q", query)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "key,title,author_name,first_publish_year,isbn,cover_i,subject,ratings_average,ebook_access,ia")

	body, err := c.get(ctx, c.baseURL+"/search.json?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("search catalog: malformed response")
	}

	docs := gjson.GetBytes(body, "docs").Array()
	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		if doc.Get("title").String() == "" {
			continue
		}
		entries = append(entries, c.entryFromDoc(doc))
	}
	c.logger.Debug("catalog search",
		zap.String("query", query),
		zap.Int64("found", gjson.GetBytes(body, "numFound").Int()),
		zap.Int("returned", len(entries)))
	return entries, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) entryFromDoc(doc gjson.Result) Entry {
	entry := Entry{
		Title:  doc.Get("title").String(),
		Author: doc.Get("author_name.0").String(),
		Year:   int(doc.Get("first_publish_year").Int()),
		Rating: doc.Get("ratings_average").Float(),
	}

	if key := doc.Get("key").String(); key != "" {
		entry.DetailURL = c.baseURL + key
	}

	for _, isbn := range doc.Get("isbn").Array() {
		if normalized := normalizeISBN(isbn.String()); normalized != "" {
			entry.ISBN = normalized
			break
		}
	}

	if id := doc.Get("cover_i").Int(); id != 0 {
		entry.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, id)
	} else if entry.ISBN != "" {
		entry.CoverURL = fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversURL, entry.ISBN)
	}

	for _, subject := range doc.Get("subject").Array() {
		if len(entry.Tags) == maxTags {
			break
		}
		entry.Tags = append(entry.Tags, subject.String())
	}
	if len(entry.Tags) > 0 {
		entry.Genre = entry.Tags[0]
	}

	if ia := doc.Get("ia.0").String(); ia != "" && doc.Get("ebook_access").String() == "public" {
		entry.ReadURL = "https://archive.org/details/" + ia
	}
	return entry
}

// normalizeISBN removes hyphens and spaces from an ISBN. It returns "" for
// anything that is not a 10 or 13 character ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	for i, r := range isbn {
		// ISBN-10 may end with an X check digit
		if (r < '0' || r > '9') && !(i == 9 && len(isbn) == 10 && (r == 'X' || r == 'x')) {
			return ""
		}
	}
	return strings.ToUpper(isbn)
}
