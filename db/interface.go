package db

import (
	"context"
	"database/sql"
)

// Querier runs statements in or out of a transaction: *sql.DB, *sql.Tx and *Tx implement it.
// Every read helper of the processors takes a Querier so it can see uncommitted rows.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// TxBeginner opens transactions
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
