package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/models"
)

// ErrUserNotFound is returned by Authenticate when a valid token names a
// user that no longer exists.
var ErrUserNotFound = fmt.Errorf("user not found: %w", apperr.ErrUnauthorized)

// UserStore is the persistence the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Credentials is the register and login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email format and that a password is present.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
}

// Service registers users and exchanges credentials for access tokens.
type Service struct {
	users  UserStore
	tokens *Tokens
}

// NewService creates an account service.
func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a user and returns an access token for it.
func (s *Service) Register(ctx context.Context, c Credentials) (string, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
	}
	hashed, err := HashPassword(c.Password)
	if err != nil {
		return "", err
	}
	u, err := s.users.CreateUser(ctx, c.Email, hashed)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID)
}

// Login verifies credentials and returns an access token. An unknown email
// and a wrong password both yield apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, c Credentials) (string, error) {
	u, err := s.users.UserByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}
	if !VerifyPassword(c.Password, u.HashedPassword) {
		return "", apperr.ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
