// Package query implements the Query Engine (§4.3): streaming execution of
// querybuilder output against pkg/kg/postgres's tables, the four
// pgvector-backed semantic search shapes, and space-hierarchy BFS.
//
// Row scanning follows a pgx.CollectRows-style convention, but generalized
// from eager collection to a lazy row-at-a-time iterator: streams here must
// support cancellation mid-read and restart-on-resubscription, so each
// Send() call opens its own cursor over iter.Seq2 instead.
package query

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgraph/sink/pkg/kg"
)

// RowScanner converts a single positioned pgx.Rows into a T value.
type RowScanner[T any] func(pgx.Rows) (T, error)

// Query is the single-result capability trait (§4.3, §9 Design Notes):
// Send executes the compiled statement and returns at most one row.
type Query[T any] interface {
	Send(ctx context.Context) (T, error)
}

// QueryStream is the many-result capability trait: Send opens one backend
// cursor and returns a lazy, pull-based row iterator. Breaking out of the
// range loop early closes the cursor; multiple streams may be open
// concurrently on the same pool.
type QueryStream[T any] interface {
	Send(ctx context.Context) (iter.Seq2[T, error], error)
}

// SQLStream is the concrete QueryStream backing every builder-produced read
// in this package: a parameterized SQL statement plus a row scanner.
type SQLStream[T any] struct {
	Pool    *pgxpool.Pool
	SQL     string
	Args    []any
	Scanner RowScanner[T]
}

// Send implements QueryStream: it runs the statement and returns a lazy
// iterator over its rows. Send applies no limit of its own, and nothing in
// this package turns a zero limit into an empty stream: a querybuilder.Return
// with Limit 0 compiles to no LIMIT clause, so the query is unbounded.
func (q SQLStream[T]) Send(ctx context.Context) (iter.Seq2[T, error], error) {
	rows, err := q.Pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query: send: %w", err)
	}
	return func(yield func(T, error) bool) {
		defer rows.Close()
		for rows.Next() {
			v, scanErr := q.Scanner(rows)
			if !yield(v, scanErr) {
				return
			}
			if scanErr != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			var zero T
			yield(zero, fmt.Errorf("query: rows: %w", err))
		}
	}, nil
}

// SQLOne adapts an SQLStream into a Query[T] returning its first row, or
// kg.ErrNotFound when the stream yields nothing.
type SQLOne[T any] struct {
	Stream SQLStream[T]
}

// Send implements Query.
func (q SQLOne[T]) Send(ctx context.Context) (T, error) {
	var zero T
	seq, err := q.Stream.Send(ctx)
	if err != nil {
		return zero, err
	}
	for v, err := range seq {
		return v, err
	}
	return zero, kg.ErrNotFound
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
