// Package storage implements every repository contract of the application
// on PostgreSQL through database/sql and the pgx driver. All queries are
// scoped by owner id; records of one owner are never visible to another.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// pgx driver registration for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the connection pool.
type Storage struct {
	DB *sql.DB
}

// PoolConfig bounds the connection pool. Zero values keep database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New opens the pool and checks that the database answers.
func New(dsn string, pool PoolConfig) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close releases the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ready checks that the database answers and the schema has been applied.
func (s *Storage) Ready(ctx context.Context) error {
	const op = "storage.Ready"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var tables int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('owners', 'patients', 'sessions', 'appointments', 'costs')`).Scan(&tables)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storeError(err))
	}
	if tables != 5 {
		return fmt.Errorf("%s: schema incomplete, found %d of 5 tables", op, tables)
	}
	return nil
}
