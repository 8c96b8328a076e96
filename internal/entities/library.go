package entities

import "time"

// User is a registered library owner. Password holds a bcrypt hash.
type User struct {
	ID       uint   `gorm:"column:user_id;primaryKey" json:"id"`
	Name     string `gorm:"column:user_name" json:"name"`
	Login    string `gorm:"column:login" json:"login"`
	Password string `gorm:"column:password" json:"-"`
	Email    string `gorm:"column:email" json:"email"`
}

func (User) TableName() string { return "users" }

// Category is a user-scoped label for books. Names are unique per user,
// ignoring case.
type Category struct {
	ID          uint      `gorm:"column:category_id;primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id" json:"user_id"`
	Name        string    `gorm:"column:category_name" json:"name"`
	Description string    `gorm:"column:category_description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Book is one imported document. FilePath points at the source file the user
// imported; CoverPath at the cover image inside the book's folder.
type Book struct {
	ID              uint      `gorm:"column:book_id;primaryKey" json:"id"`
	UserID          uint      `gorm:"column:user_id" json:"user_id"`
	CategoryID      *uint     `gorm:"column:category_id" json:"category_id,omitempty"`
	Title           string    `gorm:"column:title" json:"title"`
	Author          string    `gorm:"column:author" json:"author"`
	PublicationYear int       `gorm:"column:publication_year" json:"publication_year"`
	FilePath        string    `gorm:"column:file_path" json:"file_path"`
	CoverPath       string    `gorm:"column:cover_path" json:"cover_path"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Book) TableName() string { return "books" }

// WishlistEntry is a book the user wants but has not imported.
// CoverURL is either a remote URL or a path into the local cover cache.
type WishlistEntry struct {
	ID        uint      `gorm:"column:wishlist_id;primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id" json:"user_id"`
	Title     string    `gorm:"column:title" json:"title"`
	Author    string    `gorm:"column:author" json:"author"`
	ISBN      string    `gorm:"column:isbn" json:"isbn"`
	CoverURL  string    `gorm:"column:cover_url" json:"cover_url"`
	AddedDate time.Time `gorm:"column:added_date;autoCreateTime" json:"added_date"`
}

func (WishlistEntry) TableName() string { return "wishlist" }

// BookView is a book joined with its category name, as shown in the library
// listing. CategoryName is nil for uncategorized books.
type BookView struct {
	ID              uint    `gorm:"column:book_id" json:"id"`
	UserID          uint    `gorm:"column:user_id" json:"user_id"`
	Title           string  `gorm:"column:title" json:"title"`
	Author          string  `gorm:"column:author" json:"author"`
	PublicationYear int     `gorm:"column:publication_year" json:"publication_year"`
	FilePath        string  `gorm:"column:file_path" json:"file_path"`
	CoverPath       string  `gorm:"column:cover_path" json:"cover_path"`
	CategoryID      *uint   `gorm:"column:category_id" json:"category_id,omitempty"`
	CategoryName    *string `gorm:"column:category_name" json:"category_name,omitempty"`
}
