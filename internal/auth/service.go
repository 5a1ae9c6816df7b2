package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrEmailTaken             = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (User, error)
	ByEmail(ctx context.Context, email string) (User, string, error)
}

type Service struct {
	Users UserStore
}

func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.Users.Create(ctx, name, email, string(hash))
}

// Verify checks the password and returns the user, a plain synchronous result.
func (s *Service) Verify(ctx context.Context, email, password string) (User, error) {
	u, hash, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}
