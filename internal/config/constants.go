package config

// Default on-disk layout, relative to the working directory.
const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "data/database.db"

	// DefaultBooksDir holds one folder per imported book (cover + page renders)
	DefaultBooksDir = "data/books"

	// DefaultCoversDir holds downloaded wishlist covers
	DefaultCoversDir = "data/covers"

	// DefaultReportsDir is where exported spreadsheets are written
	DefaultReportsDir = "reports"

	// DefaultCatalogBaseURL is the OpenLibrary API root used for wishlist search
	DefaultCatalogBaseURL = "https://openlibrary.org"
)

// Page render backends.
const (
	RenderBackendAuto    = "auto"
	RenderBackendPoppler = "poppler"
	RenderBackendPreview = "preview"
)
