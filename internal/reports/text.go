package reports

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

const (
	separator      = "-------------------"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// WriteText writes the human-readable summary shown before an export.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== REPORT ===")
	fmt.Fprintln(bw)

	if len(r.Books) > 0 {
		fmt.Fprintln(bw, "=== BOOKS ===")
		for _, book := range r.Books {
			fmt.Fprintf(bw, "Title: %s\n", book.Title)
			fmt.Fprintf(bw, "Author: %s\n", book.Author)
			fmt.Fprintf(bw, "Publication year: %s\n", yearText(book.PublicationYear))
			fmt.Fprintf(bw, "Category: %s\n", book.CategoryName)
			fmt.Fprintf(bw, "Category description: %s\n", book.CategoryDescription)
			fmt.Fprintln(bw, separator)
		}
	}

	if len(r.Wishlist) > 0 {
		fmt.Fprintln(bw, "\n=== WISHLIST ===")
		for _, item := range r.Wishlist {
			fmt.Fprintf(bw, "Title: %s\n", item.Title)
			fmt.Fprintf(bw, "Author: %s\n", item.Author)
			fmt.Fprintf(bw, "Added: %s\n", timeText(item.AddedDate))
			fmt.Fprintln(bw, separator)
		}
	}

	if len(r.Categories) > 0 {
		fmt.Fprintln(bw, "\n=== CATEGORIES ===")
		for _, category := range r.Categories {
			fmt.Fprintf(bw, "Name: %s\n", category.CategoryName)
			fmt.Fprintf(bw, "Description: %s\n", category.CategoryDescription)
			fmt.Fprintf(bw, "Created: %s\n", timeText(category.CreatedAt))
			fmt.Fprintln(bw, separator)
		}
	}

	return bw.Flush()
}

func yearText(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprint(year)
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}
