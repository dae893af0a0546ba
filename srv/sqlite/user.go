package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orderdesk/common"
	"orderdesk/domain"
)

var userTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.UserStorage = (*Storage)(nil)

// PersistUser inserts or updates a User in the SQLite database
func (s *Storage) PersistUser(ctx context.Context, user domain.User) error {
	ctx, span := userTracer.Start(ctx, "Storage.PersistUser")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("user_id", user.Id),
	)

	query := "INSERT OR REPLACE INTO users (id, username, password, role) VALUES (?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, query, user.Id, user.Username, user.Password, string(user.Role))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist user: %w", err)
	}

	return nil
}

// GetUser retrieves a single User from the SQLite database
func (s *Storage) GetUser(ctx context.Context, userId string) (domain.User, error) {
	ctx, span := userTracer.Start(ctx, "Storage.GetUser")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("user_id", userId),
	)

	return s.getUserWhere(ctx, "id = ?", userId)
}

// GetUserByUsername retrieves a single User by username, matched
// case-insensitively.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	ctx, span := userTracer.Start(ctx, "Storage.GetUserByUsername")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	return s.getUserWhere(ctx, "username = ? COLLATE NOCASE", username)
}

// GetAllUsers retrieves all Users from the SQLite database
func (s *Storage) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := userTracer.Start(ctx, "Storage.GetAllUsers")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	rows, err := s.db.QueryContext(ctx, "SELECT id, username, password, role FROM users ORDER BY rowid")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		var role string
		if err := rows.Scan(&user.Id, &user.Username, &user.Password, &role); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		user.Role = domain.UserRole(role)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// DeleteUser removes a User from the SQLite database
func (s *Storage) DeleteUser(ctx context.Context, userId string) error {
	ctx, span := userTracer.Start(ctx, "Storage.DeleteUser")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("user_id", userId),
	)

	result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		span.RecordError(common.ErrNotFound)
		span.SetStatus(codes.Error, common.ErrNotFound.Error())
		return common.ErrNotFound
	}

	return nil
}

// ReplaceAllUsers atomically replaces the whole users collection.
func (s *Storage) ReplaceAllUsers(ctx context.Context, users []domain.User) error {
	ctx, span := userTracer.Start(ctx, "Storage.ReplaceAllUsers")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(users)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO users (id, username, password, role) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, user := range users {
		if _, err := stmt.ExecContext(ctx, user.Id, user.Username, user.Password, string(user.Role)); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", user.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Storage) getUserWhere(ctx context.Context, where string, arg any) (domain.User, error) {
	var user domain.User
	var role string

	query := "SELECT id, username, password, role FROM users WHERE " + where
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.Id, &user.Username, &user.Password, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, common.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = domain.UserRole(role)
	return user, nil
}
