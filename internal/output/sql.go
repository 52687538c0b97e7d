// internal/output/sql.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vitrinio/shelfscraper/internal/scraper"
)

// sqlIdentifierPattern is the shape every table name must have. Table names
// come from configuration and are interpolated into DDL, so they are
// validated rather than parameterized.
var sqlIdentifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// sqlDialect captures what differs between the supported relational
// databases: placeholder syntax and column type names.
type sqlDialect struct {
	name        string
	placeholder func(i int) string
	textType    string
	realType    string
	boolType    string
	serialPK    string
}

var (
	sqliteDialect = sqlDialect{
		name:        "sqlite",
		placeholder: func(int) string { return "?" },
		textType:    "TEXT",
		realType:    "REAL",
		boolType:    "INTEGER",
		serialPK:    "id INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	postgresDialect = sqlDialect{
		name:        "postgresql",
		placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
		textType:    "TEXT",
		realType:    "DOUBLE PRECISION",
		boolType:    "BOOLEAN",
		serialPK:    "id BIGSERIAL PRIMARY KEY",
	}
	mysqlDialect = sqlDialect{
		name:        "mysql",
		placeholder: func(int) string { return "?" },
		textType:    "TEXT",
		realType:    "DOUBLE",
		boolType:    "BOOLEAN",
		serialPK:    "id BIGINT AUTO_INCREMENT PRIMARY KEY",
	}
)

// SQLSink writes records into a relational database. Product rows go to the
// configured table, per-item failures to <table>_errors.
type SQLSink struct {
	db           *sql.DB
	dialect      sqlDialect
	site         string
	table        string
	errorTable   string
	insertRecord string
	insertError  string
}

func newSQLSink(db *sql.DB, dialect sqlDialect, table, site string) (*SQLSink, error) {
	if table == "" {
		table = "products"
	}
	if !sqlIdentifierPattern.MatchString(table) {
		db.Close()
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.name, err)
	}

	sink := &SQLSink{
		db:         db,
		dialect:    dialect,
		site:       site,
		table:      table,
		errorTable: table + "_errors",
	}
	sink.insertRecord = sink.buildInsert(sink.table, recordColumns)
	sink.insertError = sink.buildInsert(sink.errorTable, errorColumns)

	if err := sink.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *SQLSink) buildInsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = s.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// columnType picks the SQL type for a record column.
func (s *SQLSink) columnType(column string) string {
	switch column {
	case "price":
		return s.dialect.realType
	case "not_in_stock", "title_valid", "link_valid", "img_valid", "price_valid", "video_valid":
		return s.dialect.boolType
	default:
		return s.dialect.textType
	}
}

func (s *SQLSink) createTables() error {
	recordDefs := []string{s.dialect.serialPK}
	for _, column := range recordColumns {
		recordDefs = append(recordDefs, column+" "+s.columnType(column))
	}
	errorDefs := []string{s.dialect.serialPK}
	for _, column := range errorColumns {
		errorDefs = append(errorDefs, column+" "+s.dialect.textType)
	}

	statements := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(recordDefs, ", ")),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.errorTable, strings.Join(errorDefs, ", ")),
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// recordArgs converts a record into insert arguments, with native types for
// the numeric and boolean columns.
func (s *SQLSink) recordArgs(record scraper.ValidatedProductRecord) []interface{} {
	price, currency := firstPrice(record)
	return []interface{}{
		s.site,
		record.Title,
		record.Link,
		record.PrimaryImage,
		jsonCell(record.Images),
		price,
		currency,
		jsonCell(record.Prices),
		jsonCell(record.Videos),
		record.MediaType,
		record.ProductNotInStock,
		record.TitleValid,
		record.LinkValid,
		record.ImgValid,
		record.PriceValid,
		record.VideoValid,
		record.PageURL,
		record.PageTitle,
		record.Timestamp,
	}
}

// AppendRecord implements RecordSink.
func (s *SQLSink) AppendRecord(ctx context.Context, record scraper.ValidatedProductRecord) error {
	if _, err := s.db.ExecContext(ctx, s.insertRecord, s.recordArgs(record)...); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// AppendError implements RecordSink.
func (s *SQLSink) AppendError(ctx context.Context, failure scraper.ErrorRecord) error {
	args := []interface{}{s.site, failure.Message, failure.Content, failure.URL, failure.PageTitle}
	if _, err := s.db.ExecContext(ctx, s.insertError, args...); err != nil {
		return fmt.Errorf("failed to insert error record: %w", err)
	}
	return nil
}

// Flush implements RecordSink. Inserts are not batched, so there is nothing
// pending to push.
func (s *SQLSink) Flush() error {
	return nil
}

// Close implements RecordSink.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
