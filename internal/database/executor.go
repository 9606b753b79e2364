package database

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// Result carries the rows of an executed query together with the
// literal statement text and the column names reported by the driver,
// so a caller can render a grid without re-deriving either.
type Result struct {
	Columns []string
	Rows    [][]any
	Query   string
}

// Execute runs a row-returning statement inside a transaction and
// collects every row. On any failure the transaction is rolled back
// and the original error is returned wrapped in a QueryError.
func (c *Connection) Execute(ctx context.Context, query string) (*Result, error) {
	if err := c.sanityCheck(ctx); err != nil {
		return nil, err
	}

	tx, err := c.Pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, c.rollbackOnError(tx, query, err)
	}

	result, err := collectRows(rows, query)
	if err != nil {
		return nil, c.rollbackOnError(tx, query, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	return result, nil
}

// Exec runs a statement that returns no rows and reports the number of
// rows affected. It follows the same transaction and rollback contract
// as Execute.
func (c *Connection) Exec(ctx context.Context, stmt string) (int64, error) {
	if err := c.sanityCheck(ctx); err != nil {
		return 0, err
	}

	tx, err := c.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, &QueryError{Query: stmt, Err: err}
	}

	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, c.rollbackOnError(tx, stmt, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.rollbackOnError(tx, stmt, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, &QueryError{Query: stmt, Err: err}
	}

	return affected, nil
}

// rollbackOnError rolls the transaction back and wraps the original
// error. A rollback failure is logged, not returned, so the caller
// always sees the error that started the unwind.
func (c *Connection) rollbackOnError(tx *sql.Tx, query string, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		c.log().Warn("rollback failed after query error", zap.Error(rbErr))
	}
	return &QueryError{Query: query, Err: err}
}

func collectRows(rows *sql.Rows, query string) (*Result, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, Rows: [][]any{}, Query: query}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
