// Package reports assembles library reports and renders them as a text
// summary or an XLSX workbook.
package reports

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/utils"
)

// SortKey orders report rows.
type SortKey string

const (
	SortDate   SortKey = "date"
	SortName   SortKey = "name"
	SortAuthor SortKey = "author"
)

var (
	ErrEmptyReport    = errors.New("report has no rows")
	ErrUnknownSortKey = errors.New("sort must be one of: date, name, author")
)

func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortDate, SortName, SortAuthor:
		return key, nil
	case "":
		return SortDate, nil
	default:
		return "", ErrUnknownSortKey
	}
}

// Source is the set of reporting queries a Builder draws from.
type Source interface {
	GetBooksByPeriod(userID uint, from, to time.Time) ([]entities.BookReportRow, error)
	GetWishlistByPeriod(userID uint, from, to time.Time) ([]entities.WishlistReportRow, error)
	GetCategoriesByPeriod(userID uint, from, to time.Time) ([]entities.CategoryReportRow, error)
	GetBooksByCategory(userID, categoryID uint) ([]entities.BookReportRow, error)
	GetAllUserBooks(userID uint) ([]entities.BookReportRow, error)
	GetAllUserWishlist(userID uint) ([]entities.WishlistReportRow, error)
	GetAllUserCategories(userID uint) ([]entities.CategoryReportRow, error)
}

// Report is a named selection of library rows. Empty sections are left out
// of every rendering.
type Report struct {
	Name       string
	Books      []entities.BookReportRow
	Wishlist   []entities.WishlistReportRow
	Categories []entities.CategoryReportRow
}

func (r *Report) Empty() bool {
	return len(r.Books) == 0 && len(r.Wishlist) == 0 && len(r.Categories) == 0
}

// Sort reorders every section in place. Date sorts newest first; books have
// no date column and sort by publication year instead. Categories have no
// author and keep their order under SortAuthor.
func (r *Report) Sort(key SortKey) {
	switch key {
	case SortDate:
		sort.SliceStable(r.Books, func(i, j int) bool {
			return r.Books[i].PublicationYear > r.Books[j].PublicationYear
		})
		sort.SliceStable(r.Wishlist, func(i, j int) bool {
			return r.Wishlist[i].AddedDate.After(r.Wishlist[j].AddedDate)
		})
		sort.SliceStable(r.Categories, func(i, j int) bool {
			return r.Categories[i].CreatedAt.After(r.Categories[j].CreatedAt)
		})
	case SortName:
		sort.SliceStable(r.Books, func(i, j int) bool {
			return lessFold(r.Books[i].Title, r.Books[j].Title)
		})
		sort.SliceStable(r.Wishlist, func(i, j int) bool {
			return lessFold(r.Wishlist[i].Title, r.Wishlist[j].Title)
		})
		sort.SliceStable(r.Categories, func(i, j int) bool {
			return lessFold(r.Categories[i].CategoryName, r.Categories[j].CategoryName)
		})
	case SortAuthor:
		sort.SliceStable(r.Books, func(i, j int) bool {
			return lessFold(r.Books[i].Author, r.Books[j].Author)
		})
		sort.SliceStable(r.Wishlist, func(i, j int) bool {
			return lessFold(r.Wishlist[i].Author, r.Wishlist[j].Author)
		})
	}
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// FileName is the default export name: <name>_<YYYYMMDD_HHMMSS>.xlsx.
func (r *Report) FileName(now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", utils.SanitizeFilename(r.Name), now.Format("20060102_150405"))
}

// Builder runs the queries behind each report type.
type Builder struct {
	source Source
}

func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// Period collects books, wishlist entries and categories created between
// from and to, both days inclusive.
func (b *Builder) Period(userID uint, from, to time.Time, key SortKey) (*Report, error) {
	if to.Before(from) {
		from, to = to, from
	}
	report := &Report{Name: fmt.Sprintf("report_period_%s_%s", from.Format("2006-01-02"), to.Format("2006-01-02"))}

	var err error
	if report.Books, err = b.source.GetBooksByPeriod(userID, from, to); err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	if report.Wishlist, err = b.source.GetWishlistByPeriod(userID, from, to); err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	if report.Categories, err = b.source.GetCategoriesByPeriod(userID, from, to); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	report.Sort(key)
	return report, nil
}

// Category collects the books filed under one category.
func (b *Builder) Category(userID uint, category *entities.Category, key SortKey) (*Report, error) {
	rows, err := b.source.GetBooksByCategory(userID, category.ID)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	report := &Report{Name: "report_category_" + category.Name, Books: rows}
	report.Sort(key)
	return report, nil
}

// Full collects everything the user owns.
func (b *Builder) Full(userID uint, key SortKey) (*Report, error) {
	report := &Report{Name: "full_report_sorted_" + string(key)}

	var err error
	if report.Books, err = b.source.GetAllUserBooks(userID); err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	if report.Wishlist, err = b.source.GetAllUserWishlist(userID); err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	if report.Categories, err = b.source.GetAllUserCategories(userID); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	report.Sort(key)
	return report, nil
}
