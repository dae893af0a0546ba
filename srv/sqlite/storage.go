package sqlite

import (
	"context"
	"database/sql"

	"orderdesk/srv"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) CheckConnection(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ srv.Storage = (*Storage)(nil)
