package importers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// State is the position of a Draft in the import workflow.
type State int

const (
	StateSelectFile State = iota
	StateAllocateFolder
	StateExtractCover
	StateCollectMetadata
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateSelectFile:
		return "select_file"
	case StateAllocateFolder:
		return "allocate_folder"
	case StateExtractCover:
		return "extract_cover"
	case StateCollectMetadata:
		return "collect_metadata"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Draft is an import waiting for the user's metadata. It must end with
// exactly one Confirm that succeeds or fails terminally, or a Cancel.
type Draft struct {
	pipeline     *Pipeline
	session      *auth.Session
	sourcePath   string
	stageDir     string
	defaultTitle string
	firstPage    []byte
	doc          document.Document
	state        State
}

func (d *Draft) State() State { return d.state }

// SourcePath is the absolute path of the imported file, as it will be stored.
func (d *Draft) SourcePath() string { return d.sourcePath }

// DefaultTitle is the document's embedded title, or the file name without
// extension when it has none.
func (d *Draft) DefaultTitle() string { return d.defaultTitle }

// CoverPath is the provisional cover rendered from the first page.
func (d *Draft) CoverPath() string { return filepath.Join(d.stageDir, provisionalCoverName) }

func (d *Draft) PageCount() int { return d.doc.PageCount() }

// Cancel discards the draft and its staging folder.
func (d *Draft) Cancel() error {
	if d.state != StateCollectMetadata {
		return ErrDraftClosed
	}
	d.abort()
	d.pipeline.logger.Info("import cancelled", zap.String("source", d.sourcePath))
	return nil
}

// Confirm commits the import with the given metadata. Form errors
// (ErrTitleRequired, ErrUnknownCategory, ErrInvalidCover) leave the draft
// open for another attempt; every other failure, including
// ErrAlreadyInLibrary, aborts it.
func (d *Draft) Confirm(ctx context.Context, meta Metadata) (*entities.Book, error) {
	if d.state != StateCollectMetadata {
		return nil, ErrDraftClosed
	}
	p := d.pipeline

	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return nil, ErrTitleRequired
	}
	if err := p.checkCategory(d.session, meta.CategoryID); err != nil {
		return nil, err
	}
	coverName := provisionalCoverName
	if meta.CoverPath != "" {
		ext, err := validateCover(meta.CoverPath)
		if err != nil {
			return nil, err
		}
		coverName = "cover" + ext
	}

	// Cheap check before rendering every page; AddBook repeats it atomically.
	exists, err := p.books.HasBook(d.session.UserID, d.sourcePath)
	if err != nil {
		d.abort()
		return nil, fmt.Errorf("check library: %w", err)
	}
	if exists {
		d.abort()
		return nil, ErrAlreadyInLibrary
	}

	if meta.CoverPath != "" {
		if err := copyFile(meta.CoverPath, filepath.Join(d.stageDir, coverName)); err != nil {
			d.abort()
			return nil, fmt.Errorf("copy cover: %w", err)
		}
	}
	if err := d.renderPages(ctx); err != nil {
		d.abort()
		return nil, err
	}

	book := &entities.Book{
		UserID:          d.session.UserID,
		CategoryID:      meta.CategoryID,
		Title:           meta.Title,
		Author:          strings.TrimSpace(meta.Author),
		PublicationYear: meta.PublicationYear,
		FilePath:        d.sourcePath,
	}

	var finalDir string
	moved := false
	added, err := p.books.AddBook(book, func(b *entities.Book) error {
		finalDir = p.bookDir(b.ID)
		if _, err := os.Stat(finalDir); err == nil {
			return fmt.Errorf("book folder %s already exists", finalDir)
		}
		if err := os.Rename(d.stageDir, finalDir); err != nil {
			return fmt.Errorf("move staged book: %w", err)
		}
		moved = true
		b.CoverPath = filepath.Join(finalDir, coverName)
		return nil
	})
	if err != nil {
		if moved {
			os.RemoveAll(finalDir)
		}
		d.abort()
		return nil, fmt.Errorf("save book: %w", err)
	}
	if !added {
		d.abort()
		return nil, ErrAlreadyInLibrary
	}

	d.state = StateCommitted
	d.doc.Close()
	p.logger.Info("book imported",
		zap.Uint("book_id", book.ID),
		zap.String("title", book.Title),
		zap.Int("pages", d.doc.PageCount()))
	return book, nil
}

// renderPages writes page_<n>.png for every page into the staging folder.
// Page 0 reuses the cover render.
func (d *Draft) renderPages(ctx context.Context) error {
	if err := os.WriteFile(filepath.Join(d.stageDir, PageFileName(0)), d.firstPage, 0o644); err != nil {
		return fmt.Errorf("write page 0: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.pipeline.cfg.Workers)
	for page := 1; page < d.doc.PageCount(); page++ {
		g.Go(func() error {
			data, err := d.doc.RenderPage(ctx, page)
			if err != nil {
				return fmt.Errorf("render page %d: %w", page, err)
			}
			if err := os.WriteFile(filepath.Join(d.stageDir, PageFileName(page)), data, 0o644); err != nil {
				return fmt.Errorf("write page %d: %w", page, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (d *Draft) abort() {
	d.state = StateAborted
	if d.doc != nil {
		d.doc.Close()
	}
	if d.stageDir != "" {
		if err := os.RemoveAll(d.stageDir); err != nil {
			d.pipeline.logger.Warn("failed to remove staging folder",
				zap.String("stage", d.stageDir), zap.Error(err))
		}
	}
}
