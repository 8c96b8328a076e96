// Package wishlist provides database operations for wishlist entries.
package wishlist

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// ErrAlreadyInWishlist is returned when the user already wishes for a book
// with the same title and author.
var ErrAlreadyInWishlist = errors.New("this book is already in your wishlist")

// ErrUnknownUser is returned when the entry's owner does not exist.
var ErrUnknownUser = errors.New("user does not exist")

// Repository handles all wishlist database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new wishlist repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddToWishlist records a wished-for book.
func (r *Repository) AddToWishlist(userID uint, title, author, isbn, coverURL string) (*entities.WishlistEntry, error) {
	entry := &entities.WishlistEntry{
		UserID:   userID,
		Title:    title,
		Author:   author,
		ISBN:     isbn,
		CoverURL: coverURL,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		known, err := database.UserExists(tx, userID)
		if err != nil {
			return err
		}
		if !known {
			return ErrUnknownUser
		}

		var count int64
		err = tx.Model(&entities.WishlistEntry{}).
			Where("user_id = ? AND title = ? AND author = ?", userID, title, author).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInWishlist
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetWishlist returns the user's entries, most recently added first.
func (r *Repository) GetWishlist(userID uint) ([]entities.WishlistEntry, error) {
	var entries []entities.WishlistEntry
	err := r.db.Where("user_id = ?", userID).
		Order("added_date DESC").
		Order("wishlist_id DESC").
		Find(&entries).Error
	return entries, err
}

// RemoveFromWishlist deletes the matching entry. Removing an entry that does
// not exist is not an error.
func (r *Repository) RemoveFromWishlist(userID uint, title, author string) error {
	return r.db.Where("user_id = ? AND title = ? AND author = ?", userID, title, author).
		Delete(&entities.WishlistEntry{}).Error
}
