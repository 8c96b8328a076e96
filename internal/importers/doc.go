// Package importers implements the book import workflow.
//
// # Workflow
//
//	select file -> allocate staging folder -> extract cover -> collect metadata -> commit | abort
//
//	draft, err := pipeline.Begin(ctx, session, "/tmp/book.pdf")
//	// show draft.DefaultTitle() and draft.CoverPath(), ask for metadata
//	book, err := draft.Confirm(ctx, importers.Metadata{Title: "Dune", Author: "Herbert"})
//	// or: draft.Cancel()
//
// # On-disk layout
//
//	<books_dir>/<book_id>/cover.png     cover rendered from page 0 (or cover<ext> when custom)
//	<books_dir>/<book_id>/page_<n>.png  one image per zero-based page
//	<books_dir>/.staging/<uuid>/        in-progress imports
//
// The folder name is the database-assigned book ID: the staging folder is
// renamed inside the insert transaction, so a failed rename rolls the row
// back and a failed insert never leaves a folder behind.
package importers
