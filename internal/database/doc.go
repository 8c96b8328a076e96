// Package database owns the SQLite connection and the library schema.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, table creation
//	├── schema.go        # Current table shapes
//	├── migrations.go    # Idempotent upgrades of older databases
//	├── users/           # Registration, authentication, profile
//	├── categories/      # User categories
//	├── books/           # Library books and the joined listing view
//	├── wishlist/        # Wishlist entries
//	└── reports/         # Read-only reporting queries
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.Options{Path: "data/database.db"})
//
//	booksRepo := books.NewRepository(db.DB)
//	views, err := booksRepo.GetBooks(userID)
//
// Most callers go through library.New, which bundles every repository.
//
// # Migrations
//
// Older releases created tables without users.user_name, wishlist.cover_url
// and the created_at columns, and stored passwords in plaintext. Migrate
// detects each case from the live schema (pragma_table_info) and rebuilds
// the affected table inside a transaction: create new_<table>, copy rows,
// drop, rename. Each step is a no-op once applied.
//
// Foreign keys are declared but not enforced (SQLite's foreign_keys pragma
// stays off), which is what lets the rebuild drop a referenced table.
package database
