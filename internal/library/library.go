// Package library bundles the per-table repositories into the single gate
// through which the rest of the application reads and writes library data.
package library

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/database/reports"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/database/wishlist"
)

type Library struct {
	Users      *users.Repository
	Categories *categories.Repository
	Books      *books.Repository
	Wishlist   *wishlist.Repository
	Reports    *reports.Repository
}

func New(db *gorm.DB, bcryptCost int) *Library {
	return &Library{
		Users:      users.NewRepository(db, bcryptCost),
		Categories: categories.NewRepository(db),
		Books:      books.NewRepository(db),
		Wishlist:   wishlist.NewRepository(db),
		Reports:    reports.NewRepository(db),
	}
}
