package auth

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrUserExists         = errors.New("a user with this login or email already exists")
	ErrEmailTaken         = errors.New("email is already used by another account")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// UserStore is the slice of the library repository the auth service needs.
type UserStore interface {
	RegisterUser(name, email, login, password string) (bool, error)
	AuthenticateUser(login, password string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	UpdateProfile(userID uint, name, email string) (bool, error)
}

// Service validates forms and turns credentials into sessions.
type Service struct {
	users  UserStore
	logger *zap.Logger
}

// NewService creates a new authentication service.
func NewService(users UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, logger: logger}
}

// Register validates the form and creates the account.
func (s *Service) Register(form Registration) error {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Login = strings.TrimSpace(form.Login)
	if err := form.Validate(); err != nil {
		return err
	}

	created, err := s.users.RegisterUser(form.Name, form.Email, form.Login, form.Password)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	if !created {
		return ErrUserExists
	}
	s.logger.Info("user registered", zap.String("login", form.Login))
	return nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(login, password string) (*Session, error) {
	if login == "" || password == "" {
		return nil, ErrFieldsRequired
	}
	user, err := s.users.AuthenticateUser(login, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
		s.logger.Warn("failed login", zap.String("login", login))
		return nil, ErrInvalidCredentials
	}
	return NewSession(user), nil
}

// UpdateProfile changes the display name and email of the session's user and
// refreshes the session to match.
func (s *Service) UpdateProfile(session *Session, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return ErrFieldsRequired
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	updated, err := s.users.UpdateProfile(session.UserID, name, email)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if !updated {
		return ErrEmailTaken
	}
	session.UserName = name
	session.Email = email
	return nil
}
