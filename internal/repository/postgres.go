package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"webshop/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner is a querier that can also open transactions, like *pgxpool.Pool.
type beginner interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres error codes translated into application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// errText holds the user-facing messages of one entity.
type errText struct {
	notFound  string
	duplicate string
	reference string
}

// translate maps driver errors to *apperr.Error. Errors that already carry a
// kind pass through untouched.
func translate(op string, err error, text errText) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(text.notFound).WithOp(op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, text.duplicate, err).WithOp(op)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindConflict, text.reference, err).WithOp(op)
		case pgCheckViolation:
			return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("value rejected by %s", pgErr.ConstraintName), err).WithOp(op)
		}
	}
	return apperr.Internal(op, err)
}

// requireRow turns an update or delete that touched nothing into NotFound.
func requireRow(tag pgconn.CommandTag, op string, text errText) error {
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(text.notFound).WithOp(op)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends a condition; every "?" in cond is replaced by the next placeholder.
func (w *whereClause) add(cond string, args ...any) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the conditions.
func (w *whereClause) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func collect[T any](rows pgx.Rows, scan func(row pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
