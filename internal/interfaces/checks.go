package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	dbreports "github.com/mrlokans/bookshelf/internal/database/reports"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/document"
	"github.com/mrlokans/bookshelf/internal/importers"
	"github.com/mrlokans/bookshelf/internal/reports"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// BookStore/CategoryStore implementations
var _ importers.BookStore = (*books.Repository)(nil)
var _ importers.CategoryStore = (*categories.Repository)(nil)

// Report Source implementations
var _ reports.Source = (*dbreports.Repository)(nil)

// =============================================================================
// Documents
// =============================================================================

// Opener/Document implementations
var _ document.Opener = (*document.PDFOpener)(nil)
var _ document.Document = (*document.PDF)(nil)

// Renderer implementations
var _ document.Renderer = (*document.PopplerRenderer)(nil)
var _ document.Renderer = (*document.PreviewRenderer)(nil)
