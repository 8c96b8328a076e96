package importers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// stagingDirName is the folder under BooksDir that holds in-progress imports.
const stagingDirName = ".staging"

const provisionalCoverName = "cover.png"

var (
	ErrAlreadyInLibrary = errors.New("this book is already in your library")
	ErrTitleRequired    = errors.New("title is required")
	ErrUnknownCategory  = errors.New("category does not exist")
	ErrBookNotFound     = errors.New("book not found")
	ErrDraftClosed      = errors.New("import was already committed or cancelled")
)

// BookStore is the book persistence the pipeline needs.
type BookStore interface {
	AddBook(book *entities.Book, hooks ...books.InsertHook) (bool, error)
	HasBook(userID uint, filePath string) (bool, error)
	GetBook(bookID uint) (*entities.BookView, error)
	UpdateBook(bookID uint, update books.BookUpdate) (bool, error)
}

// CategoryStore resolves category IDs chosen in the metadata form.
type CategoryStore interface {
	GetCategory(id uint) (*entities.Category, error)
}

// Metadata is what the user fills in before committing an import or when
// editing a book. CoverPath optionally points at a custom cover image.
type Metadata struct {
	Title           string
	Author          string
	PublicationYear int
	CategoryID      *uint
	CoverPath       string
}

type Config struct {
	BooksDir string
	Workers  int // pages rendered concurrently
}

// Pipeline turns documents into library books.
//
// Begin opens the file, renders its cover into a staging folder and returns
// a Draft. Nothing is written to the database until Draft.Confirm, which
// renders every page, inserts the row and moves the staging folder to
// <BooksDir>/<book_id> in one transaction. Failures and cancellation remove
// the staging folder, so no partial import survives.
type Pipeline struct {
	cfg        Config
	opener     document.Opener
	books      BookStore
	categories CategoryStore
	logger     *zap.Logger
}

// NewPipeline creates a new import pipeline.
func NewPipeline(cfg Config, opener document.Opener, books BookStore, categories CategoryStore, logger *zap.Logger) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		opener:     opener,
		books:      books,
		categories: categories,
		logger:     logger,
	}
}

// Begin starts importing the file at path for the session's user.
// Unreadable files fail with document.ErrUnreadableDocument and leave
// nothing behind.
func (p *Pipeline) Begin(ctx context.Context, session *auth.Session, path string) (*Draft, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	draft := &Draft{
		pipeline:   p,
		session:    session,
		sourcePath: source,
		state:      StateSelectFile,
	}

	doc, err := p.opener.Open(source)
	if err != nil {
		return nil, err
	}
	draft.doc = doc

	draft.state = StateAllocateFolder
	draft.stageDir = filepath.Join(p.stagingRoot(), uuid.NewString())
	if err := os.MkdirAll(draft.stageDir, 0o755); err != nil {
		draft.abort()
		return nil, fmt.Errorf("create staging folder: %w", err)
	}

	draft.state = StateExtractCover
	cover, err := doc.RenderPage(ctx, 0)
	if err != nil {
		draft.abort()
		return nil, fmt.Errorf("%w: render cover: %w", document.ErrUnreadableDocument, err)
	}
	if err := os.WriteFile(filepath.Join(draft.stageDir, provisionalCoverName), cover, 0o644); err != nil {
		draft.abort()
		return nil, fmt.Errorf("write cover: %w", err)
	}
	draft.firstPage = cover

	draft.defaultTitle = doc.MetadataTitle()
	if draft.defaultTitle == "" {
		draft.defaultTitle = utils.TitleFromFilename(source)
	}
	draft.state = StateCollectMetadata

	p.logger.Debug("import staged",
		zap.String("source", source),
		zap.String("stage", draft.stageDir),
		zap.Int("pages", doc.PageCount()))
	return draft, nil
}

// Edit updates a book's metadata in place. A custom cover is copied into the
// book's folder as cover<ext> and becomes the new cover path.
func (p *Pipeline) Edit(ctx context.Context, session *auth.Session, bookID uint, meta Metadata) (*entities.BookView, error) {
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return nil, ErrTitleRequired
	}

	view, err := p.books.GetBook(bookID)
	if err != nil {
		return nil, fmt.Errorf("load book %d: %w", bookID, err)
	}
	if view == nil || view.UserID != session.UserID {
		return nil, ErrBookNotFound
	}
	if err := p.checkCategory(session, meta.CategoryID); err != nil {
		return nil, err
	}

	update := books.BookUpdate{
		Title:           meta.Title,
		Author:          strings.TrimSpace(meta.Author),
		PublicationYear: meta.PublicationYear,
		CategoryID:      meta.CategoryID,
	}

	var pending string
	if meta.CoverPath != "" {
		ext, err := validateCover(meta.CoverPath)
		if err != nil {
			return nil, err
		}
		folder := p.bookDir(bookID)
		if view.CoverPath != "" {
			folder = filepath.Dir(view.CoverPath)
		}
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, fmt.Errorf("create book folder: %w", err)
		}
		// The new cover replaces cover<ext> only once the row is updated.
		pending = filepath.Join(folder, ".cover-pending"+ext)
		if err := copyFile(meta.CoverPath, pending); err != nil {
			return nil, fmt.Errorf("copy cover: %w", err)
		}
		dst := filepath.Join(folder, "cover"+ext)
		update.CoverPath = &dst
	}

	if _, err := p.books.UpdateBook(bookID, update); err != nil {
		if pending != "" {
			os.Remove(pending)
		}
		return nil, fmt.Errorf("update book %d: %w", bookID, err)
	}
	if pending != "" {
		if err := os.Rename(pending, *update.CoverPath); err != nil {
			os.Remove(pending)
			return nil, fmt.Errorf("install cover: %w", err)
		}
	}
	p.logger.Info("book updated", zap.Uint("book_id", bookID))

	return p.books.GetBook(bookID)
}

// PurgeStaging removes staging folders older than maxAge, left behind by a
// process that died mid-import. It returns how many were removed.
func (p *Pipeline) PurgeStaging(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(p.stagingRoot())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list staging folders: %w", err)
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(p.stagingRoot(), entry.Name())); err != nil {
			return removed, fmt.Errorf("remove stale staging folder: %w", err)
		}
		removed++
	}
	if removed > 0 {
		p.logger.Info("removed stale imports", zap.Int("count", removed))
	}
	return removed, nil
}

func (p *Pipeline) checkCategory(session *auth.Session, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	category, err := p.categories.GetCategory(*categoryID)
	if err != nil {
		return fmt.Errorf("load category %d: %w", *categoryID, err)
	}
	if category == nil || category.UserID != session.UserID {
		return ErrUnknownCategory
	}
	return nil
}

func (p *Pipeline) stagingRoot() string {
	return filepath.Join(p.cfg.BooksDir, stagingDirName)
}

func (p *Pipeline) bookDir(bookID uint) string {
	return filepath.Join(p.cfg.BooksDir, strconv.FormatUint(uint64(bookID), 10))
}

// PageFileName is the name of the rendered image of a zero-based page.
func PageFileName(page int) string {
	return fmt.Sprintf("page_%d.png", page)
}
