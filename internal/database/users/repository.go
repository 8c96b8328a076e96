// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db, bcryptCost)
//	created, err := repo.RegisterUser("Ann", "ann@example.com", "ann", "Secret#123")
//	user, err := repo.AuthenticateUser("ann", "Secret#123")
package users

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db         *gorm.DB
	bcryptCost int
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB, bcryptCost int) *Repository {
	return &Repository{db: db, bcryptCost: bcryptCost}
}

// RegisterUser stores a new account with a hashed password. It returns false
// when the login or email is already taken.
func (r *Repository) RegisterUser(name, email, login, password string) (bool, error) {
	hash, err := auth.HashPassword(password, r.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:     name,
		Login:    login,
		Password: hash,
		Email:    email,
	}
	if err := r.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AuthenticateUser returns the user whose login and password match.
// Unknown logins and wrong passwords both yield auth.ErrInvalidCredentials.
func (r *Repository) AuthenticateUser(login, password string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("login = ?", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.IsPasswordHash(user.Password) {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(password, user.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the display name and email. It returns false when the
// email belongs to another account or the user does not exist.
func (r *Repository) UpdateProfile(userID uint, name, email string) (bool, error) {
	result := r.db.Model(&entities.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"user_name": name, "email": email})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
