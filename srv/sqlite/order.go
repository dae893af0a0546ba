package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"orderdesk/common"
	"orderdesk/domain"
)

var orderTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.OrderStorage = (*Storage)(nil)

const orderColumns = "id, workflow_id, created_at, title, status, is_finalized, history, steps_data"

// PersistOrder inserts or updates an Order in the SQLite database
func (s *Storage) PersistOrder(ctx context.Context, order domain.Order) error {
	ctx, span := orderTracer.Start(ctx, "Storage.PersistOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("order_id", order.Id),
		attribute.String("workflow_id", order.WorkflowId),
	)

	historyJSON, err := json.Marshal(emptyIfNilHistory(order.History))
	if err != nil {
		return fmt.Errorf("failed to marshal History: %w", err)
	}
	stepsDataJSON, err := json.Marshal(emptyIfNilStepsData(order.StepsData))
	if err != nil {
		return fmt.Errorf("failed to marshal StepsData: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO orders (
			id, workflow_id, created_at, title, status, is_finalized, history, steps_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		order.Id, order.WorkflowId, order.CreatedAt, order.Title,
		string(order.Status), order.IsFinalized, historyJSON, stepsDataJSON,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist order: %w", err)
	}

	return nil
}

// GetOrder retrieves a single Order from the SQLite database
func (s *Storage) GetOrder(ctx context.Context, orderId string) (domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "Storage.GetOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("order_id", orderId),
	)

	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	order, err := scanOrder(s.db.QueryRowContext(ctx, query, orderId))
	if err != nil {
		if err == sql.ErrNoRows {
			span.RecordError(common.ErrNotFound)
			span.SetStatus(codes.Error, common.ErrNotFound.Error())
			return domain.Order{}, common.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetOrders retrieves the Orders belonging to one workflow, newest first.
func (s *Storage) GetOrders(ctx context.Context, workflowId string) ([]domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "Storage.GetOrders")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("workflow_id", workflowId),
	)

	query := "SELECT " + orderColumns + " FROM orders WHERE workflow_id = ? ORDER BY created_at DESC"
	return s.queryOrders(ctx, query, workflowId)
}

// GetAllOrders retrieves all Orders from the SQLite database
func (s *Storage) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := orderTracer.Start(ctx, "Storage.GetAllOrders")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	query := "SELECT " + orderColumns + " FROM orders ORDER BY created_at DESC"
	return s.queryOrders(ctx, query)
}

func (s *Storage) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, nil
}

// DeleteOrder removes an Order from the SQLite database
func (s *Storage) DeleteOrder(ctx context.Context, orderId string) error {
	ctx, span := orderTracer.Start(ctx, "Storage.DeleteOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("order_id", orderId),
	)

	result, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", orderId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete order: %w", err)
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

// ReplaceAllOrders atomically replaces the whole orders collection.
func (s *Storage) ReplaceAllOrders(ctx context.Context, orders []domain.Order) error {
	ctx, span := orderTracer.Start(ctx, "Storage.ReplaceAllOrders")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(orders)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM orders"); err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO orders (id, workflow_id, created_at, title, status, is_finalized, history, steps_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, order := range orders {
		historyJSON, err := json.Marshal(emptyIfNilHistory(order.History))
		if err != nil {
			return fmt.Errorf("failed to marshal History: %w", err)
		}
		stepsDataJSON, err := json.Marshal(emptyIfNilStepsData(order.StepsData))
		if err != nil {
			return fmt.Errorf("failed to marshal StepsData: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			order.Id, order.WorkflowId, order.CreatedAt, order.Title,
			string(order.Status), order.IsFinalized, historyJSON, stepsDataJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order %s: %w", order.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var status string
	var historyJSON, stepsDataJSON []byte

	err := row.Scan(
		&order.Id, &order.WorkflowId, &order.CreatedAt, &order.Title,
		&status, &order.IsFinalized, &historyJSON, &stepsDataJSON,
	)
	if err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(historyJSON, &order.History); err != nil {
		return domain.Order{}, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if err := json.Unmarshal(stepsDataJSON, &order.StepsData); err != nil {
		return domain.Order{}, fmt.Errorf("failed to unmarshal steps data: %w", err)
	}

	return order, nil
}

func emptyIfNilHistory(history []domain.HistoryEntry) []domain.HistoryEntry {
	if history == nil {
		return []domain.HistoryEntry{}
	}
	return history
}

func emptyIfNilStepsData(stepsData map[string]domain.StepState) map[string]domain.StepState {
	if stepsData == nil {
		return map[string]domain.StepState{}
	}
	return stepsData
}
