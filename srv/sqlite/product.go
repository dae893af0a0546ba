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

var productTracer = otel.Tracer("orderdesk/srv/sqlite")

var _ domain.ProductStorage = (*Storage)(nil)

const productColumns = "id, name, code, irc, net_weight, gross_weight, description, currency_price, currency_type, manufacturer"

// PersistProduct inserts or updates a Product in the SQLite database
func (s *Storage) PersistProduct(ctx context.Context, product domain.Product) error {
	ctx, span := productTracer.Start(ctx, "Storage.PersistProduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("product_id", product.Id),
	)

	query := `
		INSERT OR REPLACE INTO products (
			id, name, code, irc, net_weight, gross_weight, description,
			currency_price, currency_type, manufacturer
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		product.Id, product.Name, product.Code, product.Irc, product.NetWeight,
		product.GrossWeight, product.Description, product.CurrencyPrice,
		string(product.CurrencyType), product.Manufacturer,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to persist product: %w", err)
	}

	return nil
}

// GetProduct retrieves a single Product from the SQLite database
func (s *Storage) GetProduct(ctx context.Context, productId string) (domain.Product, error) {
	ctx, span := productTracer.Start(ctx, "Storage.GetProduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("product_id", productId),
	)

	query := "SELECT " + productColumns + " FROM products WHERE id = ?"
	product, err := scanProduct(s.db.QueryRowContext(ctx, query, productId))
	if err != nil {
		if err == sql.ErrNoRows {
			span.RecordError(common.ErrNotFound)
			span.SetStatus(codes.Error, common.ErrNotFound.Error())
			return domain.Product{}, common.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetAllProducts retrieves all Products from the SQLite database
func (s *Storage) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, span := productTracer.Start(ctx, "Storage.GetAllProducts")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "SELECT"),
	)

	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY rowid")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

// DeleteProduct removes a Product from the SQLite database. Orders and
// proformas that reference it keep their stored data; order product fields
// simply stop resolving.
func (s *Storage) DeleteProduct(ctx context.Context, productId string) error {
	ctx, span := productTracer.Start(ctx, "Storage.DeleteProduct")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("product_id", productId),
	)

	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", productId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete product: %w", err)
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

// ReplaceAllProducts atomically replaces the whole products collection.
func (s *Storage) ReplaceAllProducts(ctx context.Context, products []domain.Product) error {
	ctx, span := productTracer.Start(ctx, "Storage.ReplaceAllProducts")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", "REPLACE"),
		attribute.Int("count", len(products)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, name, code, irc, net_weight, gross_weight, description, currency_price, currency_type, manufacturer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, product := range products {
		_, err := stmt.ExecContext(ctx,
			product.Id, product.Name, product.Code, product.Irc, product.NetWeight,
			product.GrossWeight, product.Description, product.CurrencyPrice,
			string(product.CurrencyType), product.Manufacturer,
		)
		if err != nil {
			return fmt.Errorf("failed to insert product %s: %w", product.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	var currencyType string
	err := row.Scan(
		&product.Id, &product.Name, &product.Code, &product.Irc, &product.NetWeight,
		&product.GrossWeight, &product.Description, &product.CurrencyPrice,
		&currencyType, &product.Manufacturer,
	)
	if err != nil {
		return domain.Product{}, err
	}
	product.CurrencyType = domain.CurrencyType(currencyType)
	return product, nil
}
