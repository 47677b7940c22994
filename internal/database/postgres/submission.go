package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"go.uber.org/zap"
)

// SQLSTATE codes that mean the row itself was rejected, not the database
const (
	pgNotNullViolation         = "23502"
	pgCheckViolation           = "23514"
	pgCharacterNotInRepertoire = "22021"
	pgUntranslatableCharacter  = "22P05"
)

// InsertedRow is the identity the database assigned to a new row
type InsertedRow struct {
	ID        string
	CreatedAt time.Time
}

// InsertSubmission appends one row to table and returns its identity.
// The statement runs in autocommit mode, so the row is durable once this returns.
func (c *Client) InsertSubmission(ctx context.Context, table string, values map[string]any) (*InsertedRow, error) {
	start := time.Now()
	operation := "insert_" + table

	id, err := gonanoid.New()
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, apperrors.PersistenceError("generate id", err)
	}

	row := make(map[string]any, len(values)+1)
	for column, value := range values {
		row[column] = value
	}
	row["id"] = id

	query, args, err := psql.Insert(table).
		SetMap(row).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, apperrors.PersistenceError("build insert", err)
	}

	var createdAt time.Time
	err = c.db.QueryRow(ctx, query, args...).Scan(&createdAt)
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, classifyError(operation, err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("id", id))

	return &InsertedRow{ID: id, CreatedAt: createdAt}, nil
}

// classifyError separates rows the schema rejected from storage faults
func classifyError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgNotNullViolation:
			field := pgErr.ColumnName
			if field == "" {
				field = pgErr.ConstraintName
			}
			return apperrors.InvalidInputError(field, "rejected by database constraint")
		case pgCharacterNotInRepertoire, pgUntranslatableCharacter:
			return apperrors.InvalidInputError("value", pgErr.Message)
		}
	}
	return apperrors.PersistenceError(operation, err)
}
