package auth

import "github.com/mrlokans/bookshelf/internal/entities"

// Session identifies the logged-in user. It is created by Service.Login and
// passed to every operation that acts on that user's library.
type Session struct {
	UserID   uint
	UserName string
	Login    string
	Email    string
}

func NewSession(user *entities.User) *Session {
	return &Session{
		UserID:   user.ID,
		UserName: user.Name,
		Login:    user.Login,
		Email:    user.Email,
	}
}
