package text2sql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// QueryResult holds the rows of one executed query.
type QueryResult struct {
	Columns   []string
	Rows      []map[string]any
	Truncated bool
}

// Executor runs validated read-only SQL against a named connection.
type Executor interface {
	Query(ctx context.Context, connectionID, sql string, maxRows int) (*QueryResult, error)
	Close()
}

// PgxExecutor executes queries over pgx pools, one per registered
// connection ID.
type PgxExecutor struct {
	pools  map[string]*pgxpool.Pool
	logger *observability.TracedLogger
}

// NewPgxExecutor opens a pool per configured Text2SQL connection.
func NewPgxExecutor(ctx context.Context, cfg config.PostgresConfig, logger *observability.TracedLogger) (*PgxExecutor, error) {
	pools := make(map[string]*pgxpool.Pool, len(cfg.Connections))
	for id, dsn := range cfg.Connections {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			for _, p := range pools {
				p.Close()
			}
			return nil, types.WrapError(types.SQL_EXECUTION_FAILED,
				fmt.Sprintf("failed to open connection %q", id), err)
		}
		pools[id] = pool
	}
	return &PgxExecutor{pools: pools, logger: logger}, nil
}

// Query runs the statement and collects at most maxRows rows.
func (e *PgxExecutor) Query(ctx context.Context, connectionID, sql string, maxRows int) (*QueryResult, error) {
	pool, ok := e.pools[connectionID]
	if !ok {
		return nil, types.NewError(types.SQL_CONNECTION_NOT_FOUND, "no connection registered as "+connectionID)
	}
	if err := ValidateSQL(sql); err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = 200
	}

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, types.WrapRetryableError(types.SQL_EXECUTION_FAILED, "query failed", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		if len(result.Rows) >= maxRows {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, types.WrapError(types.SQL_EXECUTION_FAILED, "failed to scan row", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil && !result.Truncated {
		return nil, types.WrapRetryableError(types.SQL_EXECUTION_FAILED, "row iteration failed", err)
	}

	if e.logger != nil {
		e.logger.Debug(ctx, "sql executed",
			"connection_id", connectionID, "rows", len(result.Rows), "truncated", result.Truncated)
	}
	return result, nil
}

// Close releases every pool.
func (e *PgxExecutor) Close() {
	for _, pool := range e.pools {
		pool.Close()
	}
}
