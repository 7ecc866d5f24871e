package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recordingDB stands in for the pool. It logs BEGIN, COMMIT and ROLLBACK next
// to the leading words of every statement, in order.
type recordingDB struct {
	log  []string
	args [][]any

	// fail returns the error for a statement, nil to let it succeed.
	fail func(sql string) error
	// scan fills the destinations of a QueryRow; nil leaves them untouched.
	scan func(sql string, dest ...any) error
}

func (db *recordingDB) record(sql string, args []any) error {
	words := strings.Fields(sql)
	if len(words) > 3 {
		words = words[:3]
	}
	db.log = append(db.log, strings.Join(words, " "))
	db.args = append(db.args, args)
	if db.fail != nil {
		return db.fail(sql)
	}
	return nil
}

func (db *recordingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := db.record(sql, args); err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (db *recordingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("recordingDB: Query is not supported")
}

func (db *recordingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return recordedRow{db: db, sql: sql, err: db.record(sql, args)}
}

func (db *recordingDB) Begin(ctx context.Context) (pgx.Tx, error) {
	db.log = append(db.log, "BEGIN")
	db.args = append(db.args, nil)
	return &recordingTx{db: db}, nil
}

type recordingTx struct {
	pgx.Tx
	db     *recordingDB
	closed bool
}

func (tx *recordingTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *recordingTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *recordingTx) Commit(ctx context.Context) error {
	tx.closed = true
	tx.db.log = append(tx.db.log, "COMMIT")
	tx.db.args = append(tx.db.args, nil)
	return nil
}

func (tx *recordingTx) Rollback(ctx context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.db.log = append(tx.db.log, "ROLLBACK")
	tx.db.args = append(tx.db.args, nil)
	return nil
}

type recordedRow struct {
	db  *recordingDB
	sql string
	err error
}

func (r recordedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.db.scan != nil {
		return r.db.scan(r.sql, dest...)
	}
	return nil
}
