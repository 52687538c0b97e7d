// internal/output/mysql.go
package output

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// NewMySQLSink connects to MySQL using a go-sql-driver DSN.
func NewMySQLSink(dsn, table, site string) (*SQLSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql sink requires a connection string")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return newSQLSink(db, mysqlDialect, table, site)
}
