package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ DB *pgxpool.Pool }

func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (User, error) {
	u := User{ID: uuid.NewString(), Name: name, Email: email}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, name, email, password_hash) VALUES ($1, $2, $3, $4)
	`, u.ID, name, email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, password_hash FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return User{}, "", fmt.Errorf("find user: %w", err)
	}
	return u, hash, nil
}
