package storage

import (
	"context"
	"database/sql"
)

// sqldb is the part of [*sql.DB] the repositories use.
type sqldb interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
