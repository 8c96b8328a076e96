package database

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// Migration is one idempotent schema step. Pending decides from the live
// schema whether Apply must run; both execute in the same transaction.
type Migration struct {
	Name    string
	Pending func(tx *gorm.DB) (bool, error)
	Apply   func(tx *gorm.DB) error
}

// Migrate brings a database created by an older release up to the current
// shape. Running it on an up-to-date database changes nothing.
func (d *Database) Migrate() error {
	for _, m := range d.migrations() {
		applied := false
		err := d.DB.Transaction(func(tx *gorm.DB) error {
			pending, err := m.Pending(tx)
			if err != nil || !pending {
				return err
			}
			applied = true
			return m.Apply(tx)
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		if applied {
			d.logger.Info("applied migration", zap.String("migration", m.Name))
		}
	}
	return nil
}

func (d *Database) migrations() []Migration {
	return []Migration{
		// Old releases stored the display name in "name".
		addColumn("users_user_name", usersTable, "user_name", map[string]string{"user_name": "name"}),
		addColumn("wishlist_cover_url", wishlistTable, "cover_url", nil),
		addColumn("books_created_at", booksTable, "created_at", nil),
		addColumn("categories_created_at", categoriesTable, "created_at", nil),
		{
			Name:    "users_hash_passwords",
			Pending: hasPlaintextPasswords,
			Apply:   d.hashPlaintextPasswords,
		},
	}
}

// addColumn rebuilds table when column is missing: create new_<table> in the
// current shape, copy every row, drop the old table and rename the copy.
// legacy maps a current column to an older column holding the same data.
func addColumn(name string, table tableDef, column string, legacy map[string]string) Migration {
	return Migration{
		Name: name,
		Pending: func(tx *gorm.DB) (bool, error) {
			cols, err := tableColumns(tx, table.name)
			if err != nil {
				return false, err
			}
			return !cols[column], nil
		},
		Apply: func(tx *gorm.DB) error {
			return rebuildTable(tx, table, legacy)
		},
	}
}

func rebuildTable(tx *gorm.DB, table tableDef, legacy map[string]string) error {
	existing, err := tableColumns(tx, table.name)
	if err != nil {
		return err
	}

	targets := make([]string, 0, len(table.columns))
	sources := make([]string, 0, len(table.columns))
	for _, col := range table.columns {
		targets = append(targets, col.name)
		old := legacy[col.name]
		switch {
		case existing[col.name]:
			sources = append(sources, col.name)
		case old != "" && existing[old]:
			sources = append(sources, fmt.Sprintf("COALESCE(%s, %s)", old, col.fallback))
		case col.fallback != "":
			sources = append(sources, col.fallback)
		default:
			return fmt.Errorf("table %s has no column %s to copy from", table.name, col.name)
		}
	}

	shadow := "new_" + table.name
	statements := []string{
		"DROP TABLE IF EXISTS " + shadow,
		table.create(shadow),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			shadow, strings.Join(targets, ", "), strings.Join(sources, ", "), table.name),
		"DROP TABLE " + table.name,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", shadow, table.name),
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("rebuild %s: %w", table.name, err)
		}
	}
	return nil
}

// tableColumns returns the column names of table as a set.
func tableColumns(tx *gorm.DB, table string) (map[string]bool, error) {
	var names []string
	if err := tx.Raw("SELECT name FROM pragma_table_info(?)", table).Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols, nil
}

type storedPassword struct {
	UserID   uint
	Password string
}

func plaintextPasswordRows(tx *gorm.DB) ([]storedPassword, error) {
	var rows []storedPassword
	if err := tx.Raw("SELECT user_id, password FROM users").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read passwords: %w", err)
	}
	plain := rows[:0]
	for _, row := range rows {
		if !auth.IsPasswordHash(row.Password) {
			plain = append(plain, row)
		}
	}
	return plain, nil
}

// hasPlaintextPasswords ignores passwords too long to hash so a database
// holding one does not re-run the migration on every start.
func hasPlaintextPasswords(tx *gorm.DB) (bool, error) {
	rows, err := plaintextPasswordRows(tx)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row.Password) <= auth.MaxPasswordBytes {
			return true, nil
		}
	}
	return false, nil
}

// hashPlaintextPasswords replaces passwords written by releases that stored
// them verbatim. Users keep logging in with the same password.
func (d *Database) hashPlaintextPasswords(tx *gorm.DB) error {
	rows, err := plaintextPasswordRows(tx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		hash, err := auth.HashPassword(row.Password, d.opts.BcryptCost)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			d.logger.Warn("legacy password exceeds bcrypt limit, left as is", zap.Uint("user_id", row.UserID))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to hash password for user %d: %w", row.UserID, err)
		}
		if err := tx.Exec("UPDATE users SET password = ? WHERE user_id = ?", hash, row.UserID).Error; err != nil {
			return fmt.Errorf("failed to store password for user %d: %w", row.UserID, err)
		}
	}
	return nil
}
