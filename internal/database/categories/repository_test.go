package categories

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/database"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "categories.db")

	db, err := database.NewDatabase(database.Options{Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.DB.Exec(
		"INSERT INTO users (user_id, user_name, login, password, email) VALUES (1, 'Ann', 'ann', 'x', 'ann@example.com'), (2, 'Bob', 'bob', 'x', 'bob@example.com')",
	).Error)

	return NewRepository(db.DB), func() { db.Close() }
}

func TestRepository_AddCategory(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	added, err := repo.AddCategory("Fiction", 1, "Novels")
	require.NoError(t, err)
	assert.True(t, added)

	list, err := repo.GetUserCategories(1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fiction", list[0].Name)
	assert.Equal(t, "Novels", list[0].Description)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestRepository_AddCategory_DuplicateName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddCategory("Fiction", 1, "")
	require.NoError(t, err)

	added, err := repo.AddCategory(" fiction ", 1, "")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.AddCategory("Fiction", 2, "")
	require.NoError(t, err)
	assert.True(t, added) // names are scoped per user
}

func TestRepository_AddCategory_UnknownUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	added, err := repo.AddCategory("Fiction", 999, "")
	require.NoError(t, err)
	assert.False(t, added)

	list, err := repo.GetUserCategories(999)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_GetUserCategories_OrderedByName(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	for _, name := range []string{"Science", "Art", "History"} {
		_, err := repo.AddCategory(name, 1, "")
		require.NoError(t, err)
	}

	list, err := repo.GetUserCategories(1)
	require.NoError(t, err)

	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Art", "History", "Science"}, names)
}

func TestRepository_DeleteCategory(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddCategory("Fiction", 1, "")
	require.NoError(t, err)
	category, err := repo.FindCategoryByName(1, "fiction")
	require.NoError(t, err)
	require.NotNil(t, category)

	require.NoError(t, repo.db.Exec(
		"INSERT INTO books (user_id, category_id, title, file_path) VALUES (1, ?, 'Dune', '/tmp/dune.pdf')", category.ID,
	).Error)

	// Someone else's category cannot be deleted.
	deleted, err := repo.DeleteCategory(category.ID, 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteCategory(category.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.GetCategory(category.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var uncategorized int64
	require.NoError(t, repo.db.Raw("SELECT count(*) FROM books WHERE category_id IS NULL").Scan(&uncategorized).Error)
	assert.Equal(t, int64(1), uncategorized)

	deleted, err = repo.DeleteCategory(category.ID, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}
