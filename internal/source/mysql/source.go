// Package mysql adapts a MySQL query result (via database/sql) into the
// stream row-source protocol.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/shoalstore/shoal-go/internal/stream"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
)

// MySQL error numbers translated into stream error markers.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errQueryInterrupted = 1317
	errLockWaitTimeout  = 1205
	errAccessDenied     = 1045
	errParseError       = 1064
	errNoSuchTable      = 1146
	errBadFieldError    = 1054
	errTooManyUserConns = 1203
	errUserLimitReached = 1226
)

// Source is a one-shot stream.RowSource over a single database/sql query.
type Source struct {
	db   *sql.DB
	sql  string
	args []any

	rows     *sql.Rows
	columns  []string
	started  time.Time
	rowCount uint64
	endSent  bool
}

// NewSource prepares a source for one query execution. The query is not
// issued until Submit.
func NewSource(db *sql.DB, query string, args ...any) *Source {
	return &Source{db: db, sql: query, args: args}
}

// Submit issues the query. Called exactly once by the stream iterator.
func (s *Source) Submit(ctx context.Context) error {
	s.started = time.Now()

	rows, err := s.db.QueryContext(ctx, s.sql, s.args...)
	if err != nil {
		return err
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return err
	}

	s.rows = rows
	s.columns = columns
	return nil
}

// Pull yields the next raw item: one RawRow per result row, any execution
// failure as an error marker, then the end sentinel and trailing metadata.
func (s *Source) Pull(ctx context.Context) (stream.RawRow, error) {
	if s.endSent {
		return s.metadata(), nil
	}

	if s.rows.Next() {
		dest := make([]any, len(s.columns))
		destPtrs := make([]any, len(s.columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := s.rows.Scan(destPtrs...); err != nil {
			return mapError(err), nil
		}

		payload := make(map[string]any, len(s.columns))
		for i, col := range s.columns {
			payload[col] = dest[i]
		}
		s.rowCount++
		return stream.ValueRow(payload), nil
	}

	if err := s.rows.Err(); err != nil {
		return mapError(err), nil
	}

	s.endSent = true
	return stream.EndRow(), nil
}

// metadata closes the result set and reports execution stats.
func (s *Source) metadata() stream.RawRow {
	_ = s.rows.Close()
	return stream.MetadataRow(&stream.Metadata{
		Metrics: stream.Metrics{
			TookNanos:    uint64(time.Since(s.started)),
			TotalRows:    s.rowCount,
			SuccessCount: 1,
		},
	})
}

// mapError translates a MySQL driver failure into a stream error marker.
func mapError(err error) stream.RawRow {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return stream.ErrorRow(stream.CodeTimeout, err.Error())
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errQueryInterrupted, errLockWaitTimeout:
			return stream.ErrorRow(stream.CodeTimeout, mysqlErr.Message)
		case errAccessDenied:
			return stream.ErrorRow(stream.CodeAuthFailure, mysqlErr.Message)
		case errParseError:
			return stream.ErrorRow(stream.CodeParsingFailed, mysqlErr.Message)
		case errNoSuchTable, errBadFieldError:
			return stream.ErrorRow(stream.CodeIndexNotFound, mysqlErr.Message)
		case errTooManyUserConns:
			return stream.ErrorRow(stream.CodeRateLimited, mysqlErr.Message)
		case errUserLimitReached:
			return stream.ErrorRow(stream.CodeQuotaExceeded, mysqlErr.Message)
		}
	}

	return stream.ErrorRow(0, err.Error())
}
