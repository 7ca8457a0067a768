// Package postgres implements the persistence ports of every feature
// package over a single pgx connection pool. The relational store is the
// single source of truth for cross-cycle state: entity last-checked times,
// events, subscriptions, and delivery status all live here.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the SQLSTATE for unique-constraint violations.
const uniqueViolationCode = "23505"

// Client wraps the shared connection pool. One Client serves every storage
// port in the module.
type Client struct {
	pool *pgxpool.Pool
}

// NewClient opens a pool against dsn and verifies connectivity.
func NewClient(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Client{pool: pool}, nil
}

// Close releases the pool.
func (c *Client) Close() {
	c.pool.Close()
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
