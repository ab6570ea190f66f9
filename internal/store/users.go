package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/models"
)

// CreateUser inserts a user. A duplicate email yields apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	email = strings.TrimSpace(email)
	u := &models.User{Email: email, HashedPassword: hashedPassword, CreatedAt: now()}
	err := db.conn.QueryRowxContext(ctx,
		db.q(`INSERT INTO users (email, hashed_password, created_at) VALUES (?, ?, ?) RETURNING id`),
		u.Email, u.HashedPassword, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store: create user %s: %w", email, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// UserByEmail looks a user up by email.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.conn.GetContext(ctx, &u,
		db.q(`SELECT id, email, hashed_password, created_at FROM users WHERE email = ?`),
		strings.TrimSpace(email))
	if err != nil {
		if notFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: user by email: %w", err)
	}
	return &u, nil
}

// UserByID looks a user up by id.
func (db *DB) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.conn.GetContext(ctx, &u,
		db.q(`SELECT id, email, hashed_password, created_at FROM users WHERE id = ?`), id)
	if err != nil {
		if notFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: user by id: %w", err)
	}
	return &u, nil
}
