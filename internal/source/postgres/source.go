// Package postgres adapts a PostgreSQL query result into the stream
// row-source protocol, so analytics-style SQL results can be consumed
// through the same iterator as native document-store streams.
//
// Usage:
//
//	src := postgres.NewSource(pool, "SELECT id, body FROM events WHERE ts > $1", since)
//	res := stream.NewResult(src, nil)
//	rows, err := res.All(ctx)
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shoalstore/shoal-go/internal/stream"
)

// PostgreSQL SQLSTATE codes translated into stream error markers.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrQueryCanceled      = "57014"
	pgErrInvalidPassword    = "28P01"
	pgErrInvalidAuthSpec    = "28000"
	pgErrSyntaxError        = "42601"
	pgErrUndefinedTable     = "42P01"
	pgErrUndefinedColumn    = "42703"
	pgErrTooManyConnections = "53300"
	pgErrDiskFull           = "53100"
)

// Source is a one-shot stream.RowSource over a single pgx query.
type Source struct {
	pool *pgxpool.Pool
	sql  string
	args []any

	rows     pgx.Rows
	columns  []string
	started  time.Time
	rowCount uint64
	endSent  bool
}

// NewSource prepares a source for one query execution. The query is not
// issued until Submit.
func NewSource(pool *pgxpool.Pool, sql string, args ...any) *Source {
	return &Source{pool: pool, sql: sql, args: args}
}

// Submit issues the query. Called exactly once by the stream iterator.
func (s *Source) Submit(ctx context.Context) error {
	s.started = time.Now()

	rows, err := s.pool.Query(ctx, s.sql, s.args...)
	if err != nil {
		return err
	}

	s.rows = rows
	fields := rows.FieldDescriptions()
	s.columns = make([]string, len(fields))
	for i, f := range fields {
		s.columns[i] = f.Name
	}
	return nil
}

// Pull yields the next raw item: one RawRow per result row, any execution
// failure as an error marker, then the end sentinel and the trailing
// metadata built from the command tag.
func (s *Source) Pull(ctx context.Context) (stream.RawRow, error) {
	if s.endSent {
		return s.metadata(), nil
	}

	if s.rows.Next() {
		values, err := s.rows.Values()
		if err != nil {
			return mapError(err), nil
		}

		payload := make(map[string]any, len(s.columns))
		for i, col := range s.columns {
			payload[col] = values[i]
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
	s.rows.Close()
	return stream.MetadataRow(&stream.Metadata{
		Metrics: stream.Metrics{
			TookNanos:    uint64(time.Since(s.started)),
			TotalRows:    s.rowCount,
			SuccessCount: 1,
		},
	})
}

// mapError translates a pgx failure into a stream error marker.
func mapError(err error) stream.RawRow {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return stream.ErrorRow(stream.CodeTimeout, err.Error())
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrQueryCanceled:
			return stream.ErrorRow(stream.CodeTimeout, pgErr.Message)
		case pgErrInvalidPassword, pgErrInvalidAuthSpec:
			return stream.ErrorRow(stream.CodeAuthFailure, pgErr.Message)
		case pgErrSyntaxError:
			return stream.ErrorRow(stream.CodeParsingFailed, pgErr.Message)
		case pgErrUndefinedTable, pgErrUndefinedColumn:
			return stream.ErrorRow(stream.CodeIndexNotFound, pgErr.Message)
		case pgErrTooManyConnections:
			return stream.ErrorRow(stream.CodeRateLimited, pgErr.Message)
		case pgErrDiskFull:
			return stream.ErrorRow(stream.CodeQuotaExceeded, pgErr.Message)
		}
	}

	return stream.ErrorRow(0, err.Error())
}
