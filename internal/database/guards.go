package database

import "gorm.io/gorm"

// UserExists reports whether a users row with userID exists. Foreign keys
// are not enforced by SQLite here, so repositories call it inside their
// insert transactions before writing user-owned rows.
func UserExists(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.Table("users").Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}
