package importers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/document/pdftest"
)

var (
	ann = &auth.Session{UserID: 1, UserName: "Ann", Login: "ann"}
	bob = &auth.Session{UserID: 2, UserName: "Bob", Login: "bob"}
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// fakeDocument renders every page as the same tiny PNG.
type fakeDocument struct {
	pages    int
	title    string
	image    []byte
	failPage int

	mu       sync.Mutex
	rendered []int
	closed   bool
}

func (d *fakeDocument) PageCount() int        { return d.pages }
func (d *fakeDocument) MetadataTitle() string { return d.title }

func (d *fakeDocument) RenderPage(_ context.Context, page int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page == d.failPage {
		return nil, errors.New("rasterizer crashed")
	}
	d.rendered = append(d.rendered, page)
	return d.image, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc *fakeDocument
	err error
}

func (o *fakeOpener) Open(string) (document.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type testEnv struct {
	pipeline   *Pipeline
	books      *books.Repository
	categories *categories.Repository
	booksDir   string
	source     string
}

func setupPipeline(t *testing.T, opener document.Opener) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDatabase(database.Options{Path: filepath.Join(dir, "library.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.DB.Exec(
		"INSERT INTO users (user_id, user_name, login, password, email) VALUES (1, 'Ann', 'ann', 'x', 'ann@example.com'), (2, 'Bob', 'bob', 'x', 'bob@example.com')",
	).Error)

	source := filepath.Join(dir, "The Book.pdf")
	require.NoError(t, os.WriteFile(source, []byte("%PDF-1.4 placeholder"), 0o644))

	env := &testEnv{
		books:      books.NewRepository(db.DB),
		categories: categories.NewRepository(db.DB),
		booksDir:   filepath.Join(dir, "books"),
		source:     source,
	}
	env.pipeline = NewPipeline(Config{BooksDir: env.booksDir, Workers: 3}, opener, env.books, env.categories, nil)
	return env
}

func newFakeOpener(t *testing.T, pages int) *fakeOpener {
	return &fakeOpener{doc: &fakeDocument{pages: pages, image: tinyPNG(t), failPage: -1}}
}

func stagingEntries(t *testing.T, env *testEnv) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(env.booksDir, stagingDirName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return entries
}

func bookFolders(t *testing.T, env *testEnv) []string {
	t.Helper()
	entries, err := os.ReadDir(env.booksDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if e.Name() != stagingDirName {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestPipeline_ImportBook(t *testing.T) {
	opener := newFakeOpener(t, 3)
	env := setupPipeline(t, opener)
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	assert.Equal(t, StateCollectMetadata, draft.State())
	assert.Equal(t, "The Book", draft.DefaultTitle())
	assert.Equal(t, 3, draft.PageCount())
	assert.FileExists(t, draft.CoverPath())

	book, err := draft.Confirm(ctx, Metadata{Title: "Dune", Author: "Herbert", PublicationYear: 1965})
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, draft.State())
	assert.True(t, opener.doc.closed)

	folder := filepath.Join(env.booksDir, "1")
	assert.Equal(t, uint(1), book.ID)
	assert.Equal(t, filepath.Join(folder, "cover.png"), book.CoverPath)
	assert.Equal(t, env.source, book.FilePath)
	for _, name := range []string{"cover.png", "page_0.png", "page_1.png", "page_2.png"} {
		assert.FileExists(t, filepath.Join(folder, name))
	}
	assert.Empty(t, stagingEntries(t, env))

	view, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", view.Title)
	assert.Equal(t, book.CoverPath, view.CoverPath)

	// page 0 is rendered once, for the cover
	assert.ElementsMatch(t, []int{0, 1, 2}, opener.doc.rendered)
}

func TestPipeline_DefaultTitleFromMetadata(t *testing.T) {
	opener := newFakeOpener(t, 1)
	opener.doc.title = "Embedded Title"
	env := setupPipeline(t, opener)

	draft, err := env.pipeline.Begin(context.Background(), ann, env.source)
	require.NoError(t, err)
	defer draft.Cancel()

	assert.Equal(t, "Embedded Title", draft.DefaultTitle())
}

func TestPipeline_Cancel(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 2))
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)

	require.NoError(t, draft.Cancel())
	assert.Equal(t, StateAborted, draft.State())
	assert.Empty(t, stagingEntries(t, env))
	assert.Empty(t, bookFolders(t, env))

	count, err := env.books.CountBooks(ann.UserID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = draft.Confirm(ctx, Metadata{Title: "x"})
	assert.ErrorIs(t, err, ErrDraftClosed)
	assert.ErrorIs(t, draft.Cancel(), ErrDraftClosed)
}

func TestPipeline_DuplicateImport(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 2))
	ctx := context.Background()

	first, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	_, err = first.Confirm(ctx, Metadata{Title: "Dune"})
	require.NoError(t, err)

	second, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	_, err = second.Confirm(ctx, Metadata{Title: "Dune"})

	assert.ErrorIs(t, err, ErrAlreadyInLibrary)
	assert.Equal(t, StateAborted, second.State())
	assert.Equal(t, []string{"1"}, bookFolders(t, env))
	assert.Empty(t, stagingEntries(t, env))

	// Another user can import the same file.
	third, err := env.pipeline.Begin(ctx, bob, env.source)
	require.NoError(t, err)
	_, err = third.Confirm(ctx, Metadata{Title: "Dune"})
	assert.NoError(t, err)
}

func TestPipeline_UnreadableDocument(t *testing.T) {
	env := setupPipeline(t, &fakeOpener{err: document.ErrUnreadableDocument})

	_, err := env.pipeline.Begin(context.Background(), ann, env.source)

	assert.ErrorIs(t, err, document.ErrUnreadableDocument)
	assert.Empty(t, stagingEntries(t, env))
	assert.Empty(t, bookFolders(t, env))
}

func TestPipeline_CoverRenderFailure(t *testing.T) {
	opener := newFakeOpener(t, 2)
	opener.doc.failPage = 0
	env := setupPipeline(t, opener)

	_, err := env.pipeline.Begin(context.Background(), ann, env.source)

	assert.ErrorIs(t, err, document.ErrUnreadableDocument)
	assert.Empty(t, stagingEntries(t, env))
}

func TestPipeline_PageRenderFailureLeavesNothing(t *testing.T) {
	opener := newFakeOpener(t, 5)
	opener.doc.failPage = 3
	env := setupPipeline(t, opener)
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)

	_, err = draft.Confirm(ctx, Metadata{Title: "Broken"})

	require.Error(t, err)
	assert.Equal(t, StateAborted, draft.State())
	assert.Empty(t, stagingEntries(t, env))
	assert.Empty(t, bookFolders(t, env))
	exists, err := env.books.HasBook(ann.UserID, env.source)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPipeline_FolderCollisionRollsBack(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))
	ctx := context.Background()

	// A stray folder occupies the ID the next insert will get.
	stray := filepath.Join(env.booksDir, "1")
	require.NoError(t, os.MkdirAll(stray, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stray, "keep.txt"), []byte("x"), 0o644))

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	_, err = draft.Confirm(ctx, Metadata{Title: "Dune"})

	require.Error(t, err)
	assert.FileExists(t, filepath.Join(stray, "keep.txt"))
	assert.Empty(t, stagingEntries(t, env))
	count, err := env.books.CountBooks(ann.UserID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPipeline_ValidationKeepsDraftOpen(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))
	ctx := context.Background()

	added, err := env.categories.AddCategory("Bob's shelf", bob.UserID, "")
	require.NoError(t, err)
	require.True(t, added)
	bobShelf, err := env.categories.FindCategoryByName(bob.UserID, "Bob's shelf")
	require.NoError(t, err)

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)

	_, err = draft.Confirm(ctx, Metadata{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = draft.Confirm(ctx, Metadata{Title: "Dune", CategoryID: &bobShelf.ID})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	badCover := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(badCover, []byte("not an image"), 0o644))
	_, err = draft.Confirm(ctx, Metadata{Title: "Dune", CoverPath: badCover})
	assert.ErrorIs(t, err, ErrInvalidCover)

	assert.Equal(t, StateCollectMetadata, draft.State())
	_, err = draft.Confirm(ctx, Metadata{Title: "Dune"})
	assert.NoError(t, err)
}

func TestPipeline_CustomCover(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))
	ctx := context.Background()

	cover := filepath.Join(t.TempDir(), "art.JPG")
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	require.NoError(t, os.WriteFile(cover, buf.Bytes(), 0o644))

	_, err := env.categories.AddCategory("Fiction", ann.UserID, "")
	require.NoError(t, err)
	fiction, err := env.categories.FindCategoryByName(ann.UserID, "Fiction")
	require.NoError(t, err)

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	book, err := draft.Confirm(ctx, Metadata{Title: "Dune", CategoryID: &fiction.ID, CoverPath: cover})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(env.booksDir, "1", "cover.jpg"), book.CoverPath)
	assert.FileExists(t, book.CoverPath)

	view, err := env.books.GetBook(book.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CategoryName)
	assert.Equal(t, "Fiction", *view.CategoryName)
}

func TestPipeline_Edit(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	book, err := draft.Confirm(ctx, Metadata{Title: "Dune"})
	require.NoError(t, err)

	cover := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(cover, tinyPNG(t), 0o644))

	view, err := env.pipeline.Edit(ctx, ann, book.ID, Metadata{Title: "Dune Messiah", Author: "Herbert", PublicationYear: 1969, CoverPath: cover})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", view.Title)
	assert.Equal(t, "Herbert", view.Author)
	assert.Equal(t, 1969, view.PublicationYear)
	assert.Equal(t, filepath.Join(env.booksDir, "1", "cover.png"), view.CoverPath)

	_, err = env.pipeline.Edit(ctx, bob, book.ID, Metadata{Title: "Stolen"})
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = env.pipeline.Edit(ctx, ann, 999, Metadata{Title: "Missing"})
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = env.pipeline.Edit(ctx, ann, book.ID, Metadata{Title: ""})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestPipeline_PurgeStaging(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))

	stale := filepath.Join(env.booksDir, stagingDirName, "stale")
	fresh := filepath.Join(env.booksDir, stagingDirName, "fresh")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.MkdirAll(fresh, 0o755))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed, err := env.pipeline.PurgeStaging(24 * time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
}

func TestPipeline_ImportRealPDF(t *testing.T) {
	opener := document.NewPDFOpener(&document.PreviewRenderer{DPI: 18})
	env := setupPipeline(t, opener)
	require.NoError(t, pdftest.Write(env.source, "A Wizard of Earthsea", 4))
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	assert.Equal(t, "A Wizard of Earthsea", draft.DefaultTitle())

	book, err := draft.Confirm(ctx, Metadata{Title: draft.DefaultTitle(), Author: "Le Guin"})
	require.NoError(t, err)

	for page := 0; page < 4; page++ {
		data, err := os.ReadFile(filepath.Join(env.booksDir, "1", PageFileName(page)))
		require.NoError(t, err)
		_, err = png.DecodeConfig(bytes.NewReader(data))
		assert.NoError(t, err)
	}
	assert.FileExists(t, book.CoverPath)
}

func TestPipeline_ImportMalformedPage(t *testing.T) {
	opener := document.NewPDFOpener(&document.PreviewRenderer{DPI: 18})
	env := setupPipeline(t, opener)
	require.NoError(t, os.WriteFile(env.source, pdftest.BreakPage(pdftest.Build("Torn", 3), 2), 0o644))
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)

	_, err = draft.Confirm(ctx, Metadata{Title: "Torn"})

	assert.ErrorIs(t, err, document.ErrUnreadableDocument)
	assert.Equal(t, StateAborted, draft.State())
	assert.Empty(t, stagingEntries(t, env))
	assert.Empty(t, bookFolders(t, env))
	count, err := env.books.CountBooks(ann.UserID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPipeline_MalformedFirstPage(t *testing.T) {
	opener := document.NewPDFOpener(&document.PreviewRenderer{DPI: 18})
	env := setupPipeline(t, opener)
	require.NoError(t, os.WriteFile(env.source, pdftest.BreakPage(pdftest.Build("Torn", 2), 0), 0o644))

	_, err := env.pipeline.Begin(context.Background(), ann, env.source)

	assert.ErrorIs(t, err, document.ErrUnreadableDocument)
	assert.Empty(t, stagingEntries(t, env))
}

func TestValidateCover_Extension(t *testing.T) {
	dir := t.TempDir()
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "art.png", data: tinyPNG(t), want: ".png"},
		{name: "art.txt", data: tinyPNG(t), want: ".png"},
		{name: "art", data: tinyPNG(t), want: ".png"},
		{name: "art.jpg", data: tinyPNG(t), want: ".png"},
		{name: "photo.JPEG", data: jpg.Bytes(), want: ".jpeg"},
		{name: "photo.png", data: jpg.Bytes(), want: ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			ext, err := validateCover(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}

// failingUpdates rejects every UpdateBook call.
type failingUpdates struct {
	*books.Repository
}

func (failingUpdates) UpdateBook(uint, books.BookUpdate) (bool, error) {
	return false, errors.New("disk I/O error")
}

func TestPipeline_EditFailedUpdateKeepsCover(t *testing.T) {
	env := setupPipeline(t, newFakeOpener(t, 1))
	ctx := context.Background()

	draft, err := env.pipeline.Begin(ctx, ann, env.source)
	require.NoError(t, err)
	book, err := draft.Confirm(ctx, Metadata{Title: "Dune"})
	require.NoError(t, err)
	original, err := os.ReadFile(book.CoverPath)
	require.NoError(t, err)

	var replacement bytes.Buffer
	require.NoError(t, png.Encode(&replacement, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	cover := filepath.Join(t.TempDir(), "new.png")
	require.NoError(t, os.WriteFile(cover, replacement.Bytes(), 0o644))

	pipeline := NewPipeline(Config{BooksDir: env.booksDir}, nil, failingUpdates{env.books}, env.categories, nil)
	_, err = pipeline.Edit(ctx, ann, book.ID, Metadata{Title: "Dune Messiah", CoverPath: cover})
	require.Error(t, err)

	current, err := os.ReadFile(book.CoverPath)
	require.NoError(t, err)
	assert.Equal(t, original, current)

	entries, err := os.ReadDir(filepath.Dir(book.CoverPath))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "pending")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "collect_metadata", StateCollectMetadata.String())
	assert.Equal(t, "state(42)", State(42).String())
}
