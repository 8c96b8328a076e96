// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - UserStore: account persistence behind the auth service (internal/auth/service.go)
//   - BookStore: book rows written by the import pipeline (internal/importers/pipeline.go)
//   - CategoryStore: category lookup during import and edit (internal/importers/pipeline.go)
//   - Source: reporting queries (internal/reports/report.go)
//
// ## Document Interfaces
//
//   - Opener: opens a file as a Document (internal/document/document.go)
//   - Document: page count, embedded title and page rendering (internal/document/document.go)
//   - Renderer: rasterizes one PDF page to PNG (internal/document/render.go)
//
// # Adding a New Document Format
//
// To import something other than PDF (e.g. EPUB):
//
//  1. Implement Document and Opener in internal/document/
//
//     type EPUB struct { ... }
//
//     func (d *EPUB) PageCount() int
//     func (d *EPUB) MetadataTitle() string
//     func (d *EPUB) RenderPage(ctx context.Context, page int) ([]byte, error)
//     func (d *EPUB) Close() error
//
//     var _ Document = (*EPUB)(nil)
//
//  2. Pick the opener by file extension in entrypoint.go
//
// # Adding a New Render Backend
//
//  1. Implement Renderer in internal/document/render.go
//
//     type MuPDFRenderer struct { Binary string; DPI int }
//
//     func (r *MuPDFRenderer) Render(ctx context.Context, doc *PDF, page int) ([]byte, error)
//
//  2. Add a RenderBackend* constant in internal/config and a case in NewRenderer
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
