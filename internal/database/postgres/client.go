package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
)

// Querier is the subset of *pgxpool.Pool the client needs
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var _ Querier = (*pgxpool.Pool)(nil)

// psql builds statements with $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Client wraps a pgx connection pool with observability
type Client struct {
	db Querier
}

// NewClient creates a PostgreSQL client on top of an established pool
func NewClient(db Querier) *Client {
	return &Client{db: db}
}

// Close closes the connection pool when it is owned by a *pgxpool.Pool
func (c *Client) Close() {
	if pool, ok := c.db.(*pgxpool.Pool); ok && pool != nil {
		pool.Close()
		logger.Info("PostgreSQL connection pool closed")
	}
}

// Ping checks if the database connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.RecordDBOperation("postgres_"+operation, status, duration)
}
