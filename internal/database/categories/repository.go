// Package categories provides database operations for user categories.
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	added, err := repo.AddCategory("Fiction", userID, "Novels and stories")
//	list, err := repo.GetUserCategories(userID)
package categories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddCategory creates a category for the user. It returns false when the
// user does not exist or already has a category with the same name
// (case-insensitive).
func (r *Repository) AddCategory(name string, userID uint, description string) (bool, error) {
	name = strings.TrimSpace(name)
	added := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		known, err := database.UserExists(tx, userID)
		if err != nil || !known {
			return err
		}

		var count int64
		err = tx.Model(&entities.Category{}).
			Where("user_id = ? AND LOWER(category_name) = LOWER(?)", userID, name).
			Count(&count).Error
		if err != nil || count > 0 {
			return err
		}

		category := &entities.Category{
			UserID:      userID,
			Name:        name,
			Description: description,
		}
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

// GetUserCategories returns the user's categories ordered by name.
func (r *Repository) GetUserCategories(userID uint) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Where("user_id = ?", userID).Order("category_name ASC").Find(&categories).Error
	return categories, err
}

// GetCategory retrieves a category by ID, or nil when it does not exist.
func (r *Repository) GetCategory(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindCategoryByName looks a category up by name (case-insensitive) within
// the user's categories. Returns nil when there is none.
func (r *Repository) FindCategoryByName(userID uint, name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("user_id = ? AND LOWER(category_name) = LOWER(?)", userID, strings.TrimSpace(name)).
		Order("category_id ASC").
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category owned by the user. Books filed under it
// become uncategorized. Returns false when the category does not exist or
// belongs to someone else.
func (r *Repository) DeleteCategory(categoryID, userID uint) (bool, error) {
	deleted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("category_id = ? AND user_id = ?", categoryID, userID).Delete(&entities.Category{})
		if result.Error != nil || result.RowsAffected == 0 {
			return result.Error
		}

		err := tx.Model(&entities.Book{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}
