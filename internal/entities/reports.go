package entities

import "time"

// Report rows keep the column order of the exported sheets; Values returns
// the cells in that order.

type BookReportRow struct {
	UserName            string `gorm:"column:user_name"`
	Title               string `gorm:"column:title"`
	Author              string `gorm:"column:author"`
	PublicationYear     int    `gorm:"column:publication_year"`
	CategoryName        string `gorm:"column:category_name"`
	CategoryDescription string `gorm:"column:category_description"`
}

func (r BookReportRow) Values() []any {
	return []any{r.UserName, r.Title, r.Author, r.PublicationYear, r.CategoryName, r.CategoryDescription}
}

type WishlistReportRow struct {
	UserName  string    `gorm:"column:user_name"`
	Title     string    `gorm:"column:title"`
	Author    string    `gorm:"column:author"`
	AddedDate time.Time `gorm:"column:added_date"`
}

func (r WishlistReportRow) Values() []any {
	return []any{r.UserName, r.Title, r.Author, r.AddedDate}
}

type CategoryReportRow struct {
	UserName            string    `gorm:"column:user_name"`
	CategoryName        string    `gorm:"column:category_name"`
	CategoryDescription string    `gorm:"column:category_description"`
	CreatedAt           time.Time `gorm:"column:created_at"`
}

func (r CategoryReportRow) Values() []any {
	return []any{r.UserName, r.CategoryName, r.CategoryDescription, r.CreatedAt}
}
