package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"multipost-bot/internal/database/models"
)

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(
		ctx,
		&user,
		"SELECT id, user_id, role FROM users WHERE user_id = ?",
		userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

func (s *Store) AddUser(ctx context.Context, userID int64, role models.Role) error {
	_, err := s.db.ExecContext(
		ctx,
		"INSERT INTO users (user_id, role) VALUES (?, ?)",
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to add user %d: %w", userID, err)
	}

	return nil
}

func (s *Store) UpdateUserRole(ctx context.Context, userID int64, role models.Role) error {
	res, err := s.db.ExecContext(
		ctx,
		"UPDATE users SET role = ? WHERE user_id = ?",
		role, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update role for user %d: %w", userID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.db.SelectContext(
		ctx,
		&users,
		"SELECT id, user_id, role FROM users ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
