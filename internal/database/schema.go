package database

import "fmt"

// tableDef describes one table in its current shape. create renders the DDL
// under an arbitrary name so migrations can build a shadow copy with the same
// definition.
type tableDef struct {
	name    string
	columns []columnDef
	ddl     string // %s is replaced by the table name
}

// columnDef lists a column of the current shape and how to fill it when an
// older table lacks it.
type columnDef struct {
	name     string
	fallback string // SQL expression used when the column is missing
}

func (t tableDef) create(name string) string {
	return fmt.Sprintf(t.ddl, name)
}

var usersTable = tableDef{
	name: "users",
	columns: []columnDef{
		{name: "user_id"},
		{name: "user_name", fallback: "''"},
		{name: "login"},
		{name: "password"},
		{name: "email"},
	},
	ddl: `CREATE TABLE IF NOT EXISTS %s (
		user_id INTEGER PRIMARY KEY,
		user_name TEXT NOT NULL,
		login TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`,
}

var categoriesTable = tableDef{
	name: "categories",
	columns: []columnDef{
		{name: "category_id"},
		{name: "user_id"},
		{name: "category_name"},
		{name: "category_description", fallback: "NULL"},
		{name: "created_at", fallback: "CURRENT_TIMESTAMP"},
	},
	ddl: `CREATE TABLE IF NOT EXISTS %s (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		category_name TEXT NOT NULL,
		category_description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id)
	)`,
}

var booksTable = tableDef{
	name: "books",
	columns: []columnDef{
		{name: "book_id"},
		{name: "user_id"},
		{name: "category_id", fallback: "NULL"},
		{name: "title"},
		{name: "author", fallback: "NULL"},
		{name: "publication_year", fallback: "NULL"},
		{name: "file_path"},
		{name: "cover_path", fallback: "NULL"},
		{name: "created_at", fallback: "CURRENT_TIMESTAMP"},
	},
	ddl: `CREATE TABLE IF NOT EXISTS %s (
		book_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		category_id INTEGER,
		title TEXT NOT NULL,
		author TEXT,
		publication_year INTEGER,
		file_path TEXT NOT NULL,
		cover_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id),
		FOREIGN KEY (category_id) REFERENCES categories (category_id)
	)`,
}

var wishlistTable = tableDef{
	name: "wishlist",
	columns: []columnDef{
		{name: "wishlist_id"},
		{name: "user_id"},
		{name: "title"},
		{name: "author", fallback: "NULL"},
		{name: "isbn", fallback: "NULL"},
		{name: "cover_url", fallback: "NULL"},
		{name: "added_date", fallback: "CURRENT_TIMESTAMP"},
	},
	ddl: `CREATE TABLE IF NOT EXISTS %s (
		wishlist_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		title TEXT NOT NULL,
		author TEXT,
		isbn TEXT,
		cover_url TEXT,
		added_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id)
	)`,
}

// tables in creation order; referenced tables come first.
var tables = []tableDef{usersTable, categoriesTable, booksTable, wishlistTable}
