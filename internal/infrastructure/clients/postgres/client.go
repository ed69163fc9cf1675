package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
	"github.com/zatekoja/feedbackbot/pkg/config"
	"github.com/zatekoja/feedbackbot/pkg/retry"
)

// Client is the PostgreSQL connection used by the database delivery sink.
type Client struct {
	db *sql.DB
}

// NewClient opens a connection pool and pings it with exponential backoff.
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = retry.Do(
		context.Background(),
		retry.DefaultConfig(),
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			observability.GetLogger().Warn().
				Int("attempt", attempt).
				Err(err).
				Dur("retry_in", nextDelay).
				Msg("PostgreSQL connection failed")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying connection pool.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
