package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// legacySchema is the layout written by the first releases: no user_name,
// no cover_url, no created_at columns and plaintext passwords.
var legacySchema = []string{
	`CREATE TABLE users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		login TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		category_name TEXT NOT NULL,
		category_description TEXT,
		FOREIGN KEY (user_id) REFERENCES users (user_id)
	)`,
	`CREATE TABLE books (
		book_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		category_id INTEGER,
		title TEXT NOT NULL,
		author TEXT,
		publication_year INTEGER,
		file_path TEXT NOT NULL,
		cover_path TEXT,
		FOREIGN KEY (user_id) REFERENCES users (user_id),
		FOREIGN KEY (category_id) REFERENCES categories (category_id)
	)`,
	`CREATE TABLE wishlist (
		wishlist_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		title TEXT NOT NULL,
		author TEXT,
		isbn TEXT,
		added_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id)
	)`,
	`INSERT INTO users (name, email, login, password) VALUES ('Ann Smith', 'ann@example.com', 'ann', 'Secret#123')`,
	`INSERT INTO categories (user_id, category_name, category_description) VALUES (1, 'Fiction', 'Novels')`,
	`INSERT INTO books (user_id, category_id, title, author, publication_year, file_path, cover_path)
		VALUES (1, 1, 'Dune', 'Herbert', 1965, '/tmp/dune.pdf', 'data/books/1/cover.png')`,
	`INSERT INTO wishlist (user_id, title, author, isbn) VALUES (1, 'Emma', 'Austen', '123')`,
}

type userRow struct {
	UserName string
	Password string
}

func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "library.db")
	db, err := NewDatabase(Options{Path: dbPath, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	return db, func() { db.Close() }
}

func createLegacyDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "legacy.db")

	// NewDatabase creates the parent directory; do it by hand for the raw connection.
	require.NoError(t, mkdirParent(dbPath))
	raw, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	for _, stmt := range legacySchema {
		require.NoError(t, raw.Exec(stmt).Error)
	}
	sqlDB, err := raw.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return dbPath
}

func columnNames(t *testing.T, db *gorm.DB, table string) []string {
	t.Helper()
	var names []string
	require.NoError(t, db.Raw("SELECT name FROM pragma_table_info(?)", table).Scan(&names).Error)
	return names
}

func TestNewDatabase_CreatesSchema(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.Equal(t, []string{"user_id", "user_name", "login", "password", "email"}, columnNames(t, db.DB, "users"))
	assert.Equal(t, []string{"category_id", "user_id", "category_name", "category_description", "created_at"}, columnNames(t, db.DB, "categories"))
	assert.Equal(t, []string{"book_id", "user_id", "category_id", "title", "author", "publication_year", "file_path", "cover_path", "created_at"}, columnNames(t, db.DB, "books"))
	assert.Equal(t, []string{"wishlist_id", "user_id", "title", "author", "isbn", "cover_url", "added_date"}, columnNames(t, db.DB, "wishlist"))
}

func TestNewDatabase_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "database.db")

	db, err := NewDatabase(Options{Path: dbPath})
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestMigrate_UpgradesLegacyDatabase(t *testing.T) {
	dbPath := createLegacyDB(t)

	db, err := NewDatabase(Options{Path: dbPath, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	defer db.Close()

	assert.Contains(t, columnNames(t, db.DB, "users"), "user_name")
	assert.NotContains(t, columnNames(t, db.DB, "users"), "name")
	assert.Contains(t, columnNames(t, db.DB, "wishlist"), "cover_url")
	assert.Contains(t, columnNames(t, db.DB, "books"), "created_at")
	assert.Contains(t, columnNames(t, db.DB, "categories"), "created_at")

	var user userRow
	require.NoError(t, db.DB.Raw("SELECT user_name, password FROM users WHERE login = 'ann'").Scan(&user).Error)
	assert.Equal(t, "Ann Smith", user.UserName)
	assert.True(t, auth.IsPasswordHash(user.Password))
	assert.NoError(t, auth.CheckPassword("Secret#123", user.Password))

	var stamped int64
	require.NoError(t, db.DB.Raw("SELECT count(*) FROM books WHERE created_at IS NOT NULL").Scan(&stamped).Error)
	assert.Equal(t, int64(1), stamped)

	var title string
	require.NoError(t, db.DB.Raw("SELECT title FROM wishlist WHERE user_id = 1").Scan(&title).Error)
	assert.Equal(t, "Emma", title)
}

func TestMigrate_Idempotent(t *testing.T) {
	dbPath := createLegacyDB(t)

	first, err := NewDatabase(Options{Path: dbPath, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	var hashBefore string
	require.NoError(t, first.DB.Raw("SELECT password FROM users WHERE user_id = 1").Scan(&hashBefore).Error)
	schemaBefore := schemaSQL(t, first.DB)
	require.NoError(t, first.Close())

	second, err := NewDatabase(Options{Path: dbPath, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	defer second.Close()

	var hashAfter string
	require.NoError(t, second.DB.Raw("SELECT password FROM users WHERE user_id = 1").Scan(&hashAfter).Error)
	assert.Equal(t, hashBefore, hashAfter)
	assert.Equal(t, schemaBefore, schemaSQL(t, second.DB))

	for table, want := range map[string]int64{"users": 1, "categories": 1, "books": 1, "wishlist": 1} {
		var count int64
		require.NoError(t, second.DB.Table(table).Count(&count).Error)
		assert.Equal(t, want, count, table)
	}

	// Migrating an already current database is a no-op as well.
	require.NoError(t, second.Migrate())
	assert.Equal(t, schemaBefore, schemaSQL(t, second.DB))
}

func TestMigrate_PreservesRowIDs(t *testing.T) {
	dbPath := createLegacyDB(t)

	db, err := NewDatabase(Options{Path: dbPath, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	defer db.Close()

	var ids []uint
	require.NoError(t, db.DB.Raw("SELECT category_id FROM books").Scan(&ids).Error)
	assert.Equal(t, []uint{1}, ids)
}

func TestIsUniqueViolation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	insert := "INSERT INTO users (user_name, login, password, email) VALUES (?, ?, ?, ?)"
	require.NoError(t, db.DB.Exec(insert, "Ann", "ann", "x", "ann@example.com").Error)

	err := db.DB.Exec(insert, "Ann", "ann", "x", "other@example.com").Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	err = db.DB.Exec("INSERT INTO users (user_name) VALUES ('x')").Error
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err)) // NOT NULL, not UNIQUE
}

func schemaSQL(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var stmts []string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&stmts).Error)
	return stmts
}

func mkdirParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
