// Package books provides database operations for the user's library.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	added, err := repo.AddBook(&entities.Book{UserID: 1, Title: "Dune", FilePath: "/tmp/dune.pdf"})
//	views, err := repo.GetBooks(1)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const viewColumns = "b.book_id, b.user_id, b.title, b.author, b.publication_year, " +
	"b.file_path, b.cover_path, b.category_id, c.category_name"

// InsertHook runs inside the AddBook transaction once the row has its ID.
// Changes it makes to the book are saved; an error rolls the insert back.
type InsertHook func(book *entities.Book) error

// BookUpdate holds the editable fields of a book. A nil CoverPath keeps the
// current cover; a nil CategoryID clears the category.
type BookUpdate struct {
	Title           string
	Author          string
	PublicationYear int
	CategoryID      *uint
	CoverPath       *string
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddBook inserts book and sets its ID. It returns false, without error, when
// the owner does not exist or already has a book with the same file path.
func (r *Repository) AddBook(book *entities.Book, hooks ...InsertHook) (bool, error) {
	added := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		known, err := database.UserExists(tx, book.UserID)
		if err != nil || !known {
			return err
		}
		exists, err := hasBook(tx, book.UserID, book.FilePath)
		if err != nil || exists {
			return err
		}
		if err := tx.Create(book).Error; err != nil {
			return err
		}

		if len(hooks) > 0 {
			for _, hook := range hooks {
				if err := hook(book); err != nil {
					return err
				}
			}
			if err := tx.Save(book).Error; err != nil {
				return err
			}
		}
		added = true
		return nil
	})
	if err != nil {
		book.ID = 0
		return false, err
	}
	return added, nil
}

// HasBook reports whether the user already imported filePath.
func (r *Repository) HasBook(userID uint, filePath string) (bool, error) {
	return hasBook(r.db, userID, filePath)
}

func hasBook(db *gorm.DB, userID uint, filePath string) (bool, error) {
	var count int64
	err := db.Model(&entities.Book{}).
		Where("file_path = ? AND user_id = ?", filePath, userID).
		Count(&count).Error
	return count > 0, err
}

// GetBooks returns the user's library, newest first.
func (r *Repository) GetBooks(userID uint) ([]entities.BookView, error) {
	var views []entities.BookView
	err := r.viewQuery().
		Where("b.user_id = ?", userID).
		Order("b.book_id DESC").
		Scan(&views).Error
	return views, err
}

// SearchBooks filters the user's library by title or author substring.
func (r *Repository) SearchBooks(userID uint, query string) ([]entities.BookView, error) {
	var views []entities.BookView
	pattern := "%" + query + "%"
	err := r.viewQuery().
		Where("b.user_id = ? AND (LOWER(b.title) LIKE LOWER(?) OR LOWER(b.author) LIKE LOWER(?))", userID, pattern, pattern).
		Order("b.book_id DESC").
		Scan(&views).Error
	return views, err
}

// GetBook retrieves one book with its category name, or nil when absent.
func (r *Repository) GetBook(bookID uint) (*entities.BookView, error) {
	var views []entities.BookView
	err := r.viewQuery().Where("b.book_id = ?", bookID).Limit(1).Scan(&views).Error
	if err != nil || len(views) == 0 {
		return nil, err
	}
	return &views[0], nil
}

// GetBookByFilePath finds the user's book imported from filePath.
func (r *Repository) GetBookByFilePath(userID uint, filePath string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("file_path = ? AND user_id = ?", filePath, userID).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook overwrites the editable fields. Returns false if no such book.
func (r *Repository) UpdateBook(bookID uint, update BookUpdate) (bool, error) {
	fields := map[string]any{
		"title":            update.Title,
		"author":           update.Author,
		"publication_year": update.PublicationYear,
		"category_id":      update.CategoryID,
	}
	if update.CoverPath != nil {
		fields["cover_path"] = *update.CoverPath
	}

	result := r.db.Model(&entities.Book{}).Where("book_id = ?", bookID).Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// CountBooks returns how many books the user has imported.
func (r *Repository) CountBooks(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *Repository) viewQuery() *gorm.DB {
	return r.db.Table("books AS b").
		Select(viewColumns).
		Joins("LEFT JOIN categories c ON b.category_id = c.category_id")
}
