// internal/output/manager.go
package output

import (
	"fmt"

	"github.com/vitrinio/shelfscraper/internal/config"
)

// NewRecordSink builds the sink the configuration asks for.
func NewRecordSink(cfg config.OutputConfig, site string) (RecordSink, error) {
	switch cfg.Format {
	case "", FormatJSONL:
		return NewJSONLSink(cfg.File, site)
	case FormatCSV:
		return NewCSVSink(cfg.File, site)
	case FormatExcel:
		return NewExcelSink(cfg.File, site)
	case FormatSQLite:
		return NewSQLiteSink(cfg.File, cfg.Table, site)
	case FormatPostgreSQL:
		return NewPostgreSQLSink(cfg.ConnectionString, cfg.Table, site)
	case FormatMySQL:
		return NewMySQLSink(cfg.ConnectionString, cfg.Table, site)
	case FormatMongoDB:
		return NewMongoSink(cfg.ConnectionString, cfg.Database, cfg.Table, site)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}
