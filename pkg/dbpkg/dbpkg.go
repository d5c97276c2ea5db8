// Package dbpkg provides database support functionality.
package dbpkg

import (
	"context"
	"database/sql"
)

// SQLInterface provides the db methods needed to perform transactions and
// queries. Both *sql.DB and *sql.Tx satisfy it, which lets repositories run
// inside or outside an explicit transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Setup opens and pings a database connection.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
