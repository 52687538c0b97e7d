// internal/output/postgresql.go
package output

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// NewPostgreSQLSink connects to PostgreSQL using a lib/pq connection string.
func NewPostgreSQLSink(connectionString, table, site string) (*SQLSink, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("postgresql sink requires a connection string")
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return newSQLSink(db, postgresDialect, table, site)
}
