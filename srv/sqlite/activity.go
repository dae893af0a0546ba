package sqlite

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orderdesk/domain"
)

var activityTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.ActivityLogStorage = (*Storage)(nil)

// PersistActivityLog inserts an ActivityLog entry into the SQLite database
func (s *Storage) PersistActivityLog(ctx context.Context, log domain.ActivityLog) error {
	ctx, span := activityTracer.Start(ctx, "Storage.PersistActivityLog")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("log_id", log.Id),
	)

	query := `
		INSERT OR REPLACE INTO activity_logs (
			id, timestamp, user_id, username, action, entity_type, entity_id, details
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		log.Id, log.Timestamp, log.UserId, log.Username,
		string(log.Action), string(log.EntityType), log.EntityId, log.Details,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist activity log: %w", err)
	}

	return nil
}

// GetActivityLogs retrieves the most recent entries, newest first. A limit
// of zero or less returns everything.
func (s *Storage) GetActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	ctx, span := activityTracer.Start(ctx, "Storage.GetActivityLogs")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.Int("limit", limit),
	)

	query := "SELECT id, timestamp, user_id, username, action, entity_type, entity_id, details FROM activity_logs ORDER BY timestamp DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ActivityLog{}
	for rows.Next() {
		var log domain.ActivityLog
		var action, entityType string
		err := rows.Scan(&log.Id, &log.Timestamp, &log.UserId, &log.Username, &action, &entityType, &log.EntityId, &log.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		log.Action = domain.ActivityAction(action)
		log.EntityType = domain.EntityType(entityType)
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity log rows: %w", err)
	}

	return logs, nil
}

// ReplaceAllActivityLogs atomically replaces the whole activity log.
func (s *Storage) ReplaceAllActivityLogs(ctx context.Context, logs []domain.ActivityLog) error {
	ctx, span := activityTracer.Start(ctx, "Storage.ReplaceAllActivityLogs")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(logs)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_logs"); err != nil {
		return fmt.Errorf("failed to clear activity logs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activity_logs (id, timestamp, user_id, username, action, entity_type, entity_id, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, log := range logs {
		_, err := stmt.ExecContext(ctx,
			log.Id, log.Timestamp, log.UserId, log.Username,
			string(log.Action), string(log.EntityType), log.EntityId, log.Details,
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity log %s: %w", log.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
