package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGUserStorage struct {
	DB *sqlx.DB
}

func (p *PGUserStorage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	slog.Debug("Creating user in PG", "userID", user.ID, "email", user.Email)

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", user.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return models.User{}, errors.New("EMAIL_EXISTS")
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (user_id, email, first_name, last_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsActive).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		slog.Error("SQL insert user error", "err", err)
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("commit transaction: %w", err)
	}

	return user, nil
}

func (p *PGUserStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	slog.Debug("Getting user by ID in PG", "userID", userID)

	var user models.User
	err := p.DB.GetContext(ctx, &user, `
		SELECT user_id, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("NOT_FOUND")
		}
		slog.Error("SQL get user by ID error", "err", err)
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (p *PGUserStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	slog.Debug("Getting user by email in PG", "email", email)

	var user models.User
	err := p.DB.GetContext(ctx, &user, `
		SELECT user_id, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("NOT_FOUND")
		}
		slog.Error("SQL get user by email error", "err", err)
		return models.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (p *PGUserStorage) ListUsers(ctx context.Context, offset int, limit int) ([]models.User, error) {
	slog.Debug("Listing users in PG", "offset", offset, "limit", limit)

	users := []models.User{}
	err := p.DB.SelectContext(ctx, &users, `
		SELECT user_id, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		FROM users
		ORDER BY created_at DESC, user_id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		slog.Error("SQL list users error", "err", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (p *PGUserStorage) UpdateUser(ctx context.Context, userID uuid.UUID, update models.UserUpdate) (models.User, error) {
	slog.Debug("Updating user in PG", "userID", userID)

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var user models.User
	err = tx.GetContext(ctx, &user, `
		SELECT user_id, email, first_name, last_name, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("NOT_FOUND")
		}
		return models.User{}, fmt.Errorf("select user for update: %w", err)
	}

	if update.Email != nil && *update.Email != user.Email {
		var taken bool
		err = tx.GetContext(ctx, &taken,
			"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)",
			*update.Email, userID)
		if err != nil {
			return models.User{}, fmt.Errorf("check email exists: %w", err)
		}
		if taken {
			return models.User{}, errors.New("EMAIL_EXISTS")
		}
		user.Email = *update.Email
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, is_active = $4, updated_at = now()
		WHERE user_id = $5
		RETURNING updated_at
	`, user.Email, user.FirstName, user.LastName, user.IsActive, userID).
		Scan(&user.UpdatedAt)
	if err != nil {
		slog.Error("SQL update user error", "err", err)
		return models.User{}, fmt.Errorf("update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("commit transaction: %w", err)
	}

	return user, nil
}

func (p *PGUserStorage) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	slog.Debug("Deleting user in PG", "userID", userID)

	result, err := p.DB.ExecContext(ctx, "DELETE FROM users WHERE user_id = $1", userID)
	if err != nil {
		slog.Error("SQL delete user error", "err", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("NOT_FOUND")
	}

	return nil
}
