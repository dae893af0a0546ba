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

var proformaTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.ProformaStorage = (*Storage)(nil)

// PersistProforma inserts or updates a Proforma in the SQLite database
func (s *Storage) PersistProforma(ctx context.Context, proforma domain.Proforma) error {
	ctx, span := proformaTracer.Start(ctx, "Storage.PersistProforma")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("proforma_id", proforma.Id),
	)

	items := proforma.Items
	if items == nil {
		items = []domain.ProformaItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal Items: %w", err)
	}

	query := "INSERT OR REPLACE INTO proformas (id, company_name, date, items, total) VALUES (?, ?, ?, ?, ?)"
	_, err = s.db.ExecContext(ctx, query, proforma.Id, proforma.CompanyName, proforma.Date, itemsJSON, proforma.Total)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist proforma: %w", err)
	}

	return nil
}

// GetProforma retrieves a single Proforma from the SQLite database
func (s *Storage) GetProforma(ctx context.Context, proformaId string) (domain.Proforma, error) {
	ctx, span := proformaTracer.Start(ctx, "Storage.GetProforma")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("proforma_id", proformaId),
	)

	var proforma domain.Proforma
	var itemsJSON []byte

	query := "SELECT id, company_name, date, items, total FROM proformas WHERE id = ?"
	err := s.db.QueryRowContext(ctx, query, proformaId).Scan(
		&proforma.Id, &proforma.CompanyName, &proforma.Date, &itemsJSON, &proforma.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			span.RecordError(common.ErrNotFound)
			span.SetStatus(codes.Error, common.ErrNotFound.Error())
			return domain.Proforma{}, common.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Proforma{}, fmt.Errorf("failed to get proforma: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &proforma.Items); err != nil {
		return domain.Proforma{}, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	return proforma, nil
}

// GetAllProformas retrieves all Proformas from the SQLite database
func (s *Storage) GetAllProformas(ctx context.Context) ([]domain.Proforma, error) {
	ctx, span := proformaTracer.Start(ctx, "Storage.GetAllProformas")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	rows, err := s.db.QueryContext(ctx, "SELECT id, company_name, date, items, total FROM proformas ORDER BY date DESC")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query proformas: %w", err)
	}
	defer rows.Close()

	proformas := []domain.Proforma{}
	for rows.Next() {
		var proforma domain.Proforma
		var itemsJSON []byte
		if err := rows.Scan(&proforma.Id, &proforma.CompanyName, &proforma.Date, &itemsJSON, &proforma.Total); err != nil {
			return nil, fmt.Errorf("failed to scan proforma row: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &proforma.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		proformas = append(proformas, proforma)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proforma rows: %w", err)
	}

	return proformas, nil
}

// DeleteProforma removes a Proforma from the SQLite database
func (s *Storage) DeleteProforma(ctx context.Context, proformaId string) error {
	ctx, span := proformaTracer.Start(ctx, "Storage.DeleteProforma")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("proforma_id", proformaId),
	)

	result, err := s.db.ExecContext(ctx, "DELETE FROM proformas WHERE id = ?", proformaId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete proforma: %w", err)
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

// ReplaceAllProformas atomically replaces the whole proformas collection.
func (s *Storage) ReplaceAllProformas(ctx context.Context, proformas []domain.Proforma) error {
	ctx, span := proformaTracer.Start(ctx, "Storage.ReplaceAllProformas")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(proformas)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM proformas"); err != nil {
		return fmt.Errorf("failed to clear proformas: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO proformas (id, company_name, date, items, total) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, proforma := range proformas {
		items := proforma.Items
		if items == nil {
			items = []domain.ProformaItem{}
		}
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to marshal Items: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, proforma.Id, proforma.CompanyName, proforma.Date, itemsJSON, proforma.Total); err != nil {
			return fmt.Errorf("failed to insert proforma %s: %w", proforma.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
