package wishlist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "wishlist.db")

	db, err := database.NewDatabase(database.Options{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.DB.Exec(
		"INSERT INTO users (user_id, user_name, login, password, email) VALUES (1, 'Ann', 'ann', 'x', 'ann@example.com'), (2, 'Bob', 'bob', 'x', 'bob@example.com')",
	).Error)

	return NewRepository(db.DB), func() { db.Close() }
}

func TestRepository_AddToWishlist(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	entry, err := repo.AddToWishlist(1, "Emma", "Austen", "9780141439587", "https://covers.example/emma.jpg")

	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.AddedDate.IsZero())
}

func TestRepository_AddToWishlist_Duplicate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddToWishlist(1, "Emma", "Austen", "", "")
	require.NoError(t, err)

	_, err = repo.AddToWishlist(1, "Emma", "Austen", "other-isbn", "")
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	// Same title by another author is a different book.
	_, err = repo.AddToWishlist(1, "Emma", "Someone Else", "", "")
	assert.NoError(t, err)

	entries, err := repo.GetWishlist(1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRepository_AddToWishlist_UnknownUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	entry, err := repo.AddToWishlist(999, "Emma", "Austen", "", "")

	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.Nil(t, entry)
	entries, err := repo.GetWishlist(999)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepository_GetWishlist_NewestFirst(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.db.Exec(
		"INSERT INTO wishlist (user_id, title, author, added_date) VALUES (1, 'Old', 'A', '2024-01-01 10:00:00'), (1, 'New', 'B', '2024-06-01 10:00:00'), (2, 'Other', 'C', '2024-07-01 10:00:00')",
	).Error)

	entries, err := repo.GetWishlist(1)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "New", entries[0].Title)
	assert.Equal(t, "Old", entries[1].Title)
}

func TestRepository_RemoveFromWishlist(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddToWishlist(1, "Emma", "Austen", "", "")
	require.NoError(t, err)

	require.NoError(t, repo.RemoveFromWishlist(1, "Emma", "Austen"))
	require.NoError(t, repo.RemoveFromWishlist(1, "Emma", "Austen")) // idempotent

	entries, err := repo.GetWishlist(1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
