// Command generate_demo creates a demo library with sample public domain books.
// Usage: go run ./cmd/generate_demo [-dir ./demo]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/document/pdftest"
	"github.com/mrlokans/bookshelf/internal/importers"
	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/utils"
)

const (
	defaultDemoDir = "./demo"
	demoLogin      = "demo"
	demoPassword   = "Demo#2024"
)

type demoBook struct {
	Title    string
	Author   string
	Year     int
	Category string
	Pages    int
}

var demoCategories = map[string]string{
	"Philosophy": "Stoics and friends",
	"Fiction":    "Novels and short stories",
	"Science":    "Natural philosophy",
}

var demoBooks = []demoBook{
	{Title: "Meditations", Author: "Marcus Aurelius", Year: 180, Category: "Philosophy", Pages: 6},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Year: 1813, Category: "Fiction", Pages: 8},
	{Title: "Frankenstein", Author: "Mary Shelley", Year: 1818, Category: "Fiction", Pages: 5},
	{Title: "On the Origin of Species", Author: "Charles Darwin", Year: 1859, Category: "Science", Pages: 7},
	{Title: "The Art of War", Author: "Sun Tzu", Pages: 3},
}

var demoWishlist = []struct{ Title, Author, ISBN string }{
	{"Walden", "Henry David Thoreau", "9780691096124"},
	{"The Republic", "Plato", ""},
	{"Moby-Dick", "Herman Melville", "9780142437247"},
}

func main() {
	dir := flag.String("dir", defaultDemoDir, "directory for the demo library")
	flag.Parse()

	log.Printf("Generating demo library at %s...", *dir)

	// Delete existing demo library to start fresh
	if err := os.RemoveAll(*dir); err != nil {
		log.Fatalf("Failed to remove existing demo library: %v", err)
	}

	db, err := database.NewDatabase(database.Options{Path: filepath.Join(*dir, "database.db")})
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	lib := library.New(db.DB, bcrypt.DefaultCost)
	svc := auth.NewService(lib.Users, nil)
	if err := svc.Register(auth.Registration{Name: "Demo Reader", Email: "demo@example.com", Login: demoLogin, Password: demoPassword}); err != nil {
		log.Fatalf("Failed to register demo user: %v", err)
	}
	session, err := svc.Login(demoLogin, demoPassword)
	if err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}

	categoryIDs := createCategories(lib, session)

	pipeline := importers.NewPipeline(
		importers.Config{BooksDir: filepath.Join(*dir, "books"), Workers: 4},
		document.NewPDFOpener(&document.PreviewRenderer{DPI: 48}),
		lib.Books,
		lib.Categories,
		nil,
	)

	sources := filepath.Join(*dir, "sources")
	for _, book := range demoBooks {
		path := filepath.Join(sources, utils.SanitizeFilename(book.Title)+".pdf")
		if err := os.MkdirAll(sources, 0o755); err != nil {
			log.Fatalf("Failed to create sources dir: %v", err)
		}
		if err := pdftest.Write(path, book.Title, book.Pages); err != nil {
			log.Printf("Failed to write %s: %v", path, err)
			continue
		}
		if err := importBook(pipeline, session, path, book, categoryIDs); err != nil {
			log.Printf("Failed to import %s: %v", book.Title, err)
			continue
		}
		log.Printf("Imported: %s by %s (%d pages)", book.Title, book.Author, book.Pages)
	}

	for _, w := range demoWishlist {
		if _, err := lib.Wishlist.AddToWishlist(session.UserID, w.Title, w.Author, w.ISBN, ""); err != nil {
			log.Printf("Failed to add %s to wishlist: %v", w.Title, err)
		}
	}

	log.Printf("Demo library generated successfully! Log in as %s / %s", demoLogin, demoPassword)
}

func createCategories(lib *library.Library, session *auth.Session) map[string]uint {
	ids := make(map[string]uint)
	for name, description := range demoCategories {
		if _, err := lib.Categories.AddCategory(name, session.UserID, description); err != nil {
			log.Printf("Failed to create category %s: %v", name, err)
			continue
		}
		category, err := lib.Categories.FindCategoryByName(session.UserID, name)
		if err != nil || category == nil {
			log.Printf("Failed to load category %s: %v", name, err)
			continue
		}
		ids[name] = category.ID
	}
	return ids
}

func importBook(pipeline *importers.Pipeline, session *auth.Session, path string, book demoBook, categoryIDs map[string]uint) error {
	ctx := context.Background()
	draft, err := pipeline.Begin(ctx, session, path)
	if err != nil {
		return err
	}

	meta := importers.Metadata{Title: book.Title, Author: book.Author, PublicationYear: book.Year}
	if id, ok := categoryIDs[book.Category]; ok {
		meta.CategoryID = &id
	}
	if _, err := draft.Confirm(ctx, meta); err != nil {
		if draft.State() == importers.StateCollectMetadata {
			draft.Cancel()
		}
		return err
	}
	return nil
}
