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

var workflowTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.WorkflowStorage = (*Storage)(nil)

// PersistWorkflow inserts or updates a Workflow in the SQLite database
func (s *Storage) PersistWorkflow(ctx context.Context, workflow domain.Workflow) error {
	ctx, span := workflowTracer.Start(ctx, "Storage.PersistWorkflow")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("workflow_id", workflow.Id),
	)

	stepsJSON, err := json.Marshal(workflow.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal Steps: %w", err)
	}

	query := "INSERT OR REPLACE INTO workflows (id, name, steps) VALUES (?, ?, ?)"
	_, err = s.db.ExecContext(ctx, query, workflow.Id, workflow.Name, stepsJSON)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist workflow: %w", err)
	}

	return nil
}

// GetWorkflow retrieves a single Workflow from the SQLite database
func (s *Storage) GetWorkflow(ctx context.Context, workflowId string) (domain.Workflow, error) {
	ctx, span := workflowTracer.Start(ctx, "Storage.GetWorkflow")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("workflow_id", workflowId),
	)

	var workflow domain.Workflow
	var stepsJSON []byte

	query := "SELECT id, name, steps FROM workflows WHERE id = ?"
	err := s.db.QueryRowContext(ctx, query, workflowId).Scan(&workflow.Id, &workflow.Name, &stepsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			span.RecordError(common.ErrNotFound)
			span.SetStatus(codes.Error, common.ErrNotFound.Error())
			return domain.Workflow{}, common.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Workflow{}, fmt.Errorf("failed to get workflow: %w", err)
	}

	if err := json.Unmarshal(stepsJSON, &workflow.Steps); err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	return workflow, nil
}

// GetAllWorkflows retrieves all Workflows from the SQLite database
func (s *Storage) GetAllWorkflows(ctx context.Context) ([]domain.Workflow, error) {
	ctx, span := workflowTracer.Start(ctx, "Storage.GetAllWorkflows")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, steps FROM workflows ORDER BY rowid")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := []domain.Workflow{}
	for rows.Next() {
		var workflow domain.Workflow
		var stepsJSON []byte
		if err := rows.Scan(&workflow.Id, &workflow.Name, &stepsJSON); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		if err := json.Unmarshal(stepsJSON, &workflow.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}

	return workflows, nil
}

// DeleteWorkflow removes a Workflow from the SQLite database. Orders that
// reference it are left in place and become orphans.
func (s *Storage) DeleteWorkflow(ctx context.Context, workflowId string) error {
	ctx, span := workflowTracer.Start(ctx, "Storage.DeleteWorkflow")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("workflow_id", workflowId),
	)

	result, err := s.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = ?", workflowId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete workflow: %w", err)
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

// ReplaceAllWorkflows atomically replaces the whole workflows collection.
func (s *Storage) ReplaceAllWorkflows(ctx context.Context, workflows []domain.Workflow) error {
	ctx, span := workflowTracer.Start(ctx, "Storage.ReplaceAllWorkflows")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(workflows)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM workflows"); err != nil {
		return fmt.Errorf("failed to clear workflows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO workflows (id, name, steps) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, workflow := range workflows {
		stepsJSON, err := json.Marshal(workflow.Steps)
		if err != nil {
			return fmt.Errorf("failed to marshal Steps: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, workflow.Id, workflow.Name, stepsJSON); err != nil {
			return fmt.Errorf("failed to insert workflow %s: %w", workflow.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
