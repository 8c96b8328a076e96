// Package reports holds the read-only queries behind exported reports.
//
// Period filters compare calendar days in UTC, the zone timestamps are
// stored in: a row created at any time on the "to" day is included.
package reports

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const dayLayout = "2006-01-02"

const bookRowsQuery = `
	SELECT u.user_name, b.title, b.author, b.publication_year, c.category_name, c.category_description
	FROM books b
	JOIN users u ON b.user_id = u.user_id
	%s JOIN categories c ON b.category_id = c.category_id
	WHERE b.user_id = ?`

const wishlistRowsQuery = `
	SELECT u.user_name, w.title, w.author, w.added_date
	FROM wishlist w
	JOIN users u ON w.user_id = u.user_id
	WHERE w.user_id = ?`

const categoryRowsQuery = `
	SELECT u.user_name, c.category_name, c.category_description, c.created_at
	FROM categories c
	JOIN users u ON c.user_id = u.user_id
	WHERE c.user_id = ?`

// Repository runs the reporting queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reports repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBooksByPeriod(userID uint, from, to time.Time) ([]entities.BookReportRow, error) {
	var rows []entities.BookReportRow
	err := r.db.Raw(booksQuery("LEFT")+" AND date(b.created_at) BETWEEN ? AND ? ORDER BY b.book_id",
		userID, from.Format(dayLayout), to.Format(dayLayout)).Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetWishlistByPeriod(userID uint, from, to time.Time) ([]entities.WishlistReportRow, error) {
	var rows []entities.WishlistReportRow
	err := r.db.Raw(wishlistRowsQuery+" AND date(w.added_date) BETWEEN ? AND ? ORDER BY w.wishlist_id",
		userID, from.Format(dayLayout), to.Format(dayLayout)).Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetCategoriesByPeriod(userID uint, from, to time.Time) ([]entities.CategoryReportRow, error) {
	var rows []entities.CategoryReportRow
	err := r.db.Raw(categoryRowsQuery+" AND date(c.created_at) BETWEEN ? AND ? ORDER BY c.category_id",
		userID, from.Format(dayLayout), to.Format(dayLayout)).Scan(&rows).Error
	return rows, err
}

// GetBooksByCategory lists only books filed under categoryID.
func (r *Repository) GetBooksByCategory(userID, categoryID uint) ([]entities.BookReportRow, error) {
	var rows []entities.BookReportRow
	err := r.db.Raw(booksQuery("")+" AND b.category_id = ? ORDER BY b.book_id",
		userID, categoryID).Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetAllUserBooks(userID uint) ([]entities.BookReportRow, error) {
	var rows []entities.BookReportRow
	err := r.db.Raw(booksQuery("LEFT")+" ORDER BY b.book_id", userID).Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetAllUserWishlist(userID uint) ([]entities.WishlistReportRow, error) {
	var rows []entities.WishlistReportRow
	err := r.db.Raw(wishlistRowsQuery+" ORDER BY w.wishlist_id", userID).Scan(&rows).Error
	return rows, err
}

func (r *Repository) GetAllUserCategories(userID uint) ([]entities.CategoryReportRow, error) {
	var rows []entities.CategoryReportRow
	err := r.db.Raw(categoryRowsQuery+" ORDER BY c.category_id", userID).Scan(&rows).Error
	return rows, err
}

// booksQuery picks the category join: LEFT keeps uncategorized books, an
// inner join drops them.
func booksQuery(join string) string {
	return fmt.Sprintf(bookRowsQuery, join)
}
