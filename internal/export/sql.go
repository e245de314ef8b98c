// Package export copies the record history into a SQL table.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/util"
)

// DefaultTable receives the history when no table is configured.
const DefaultTable = "form_records"

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("invalid table name")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Columns of the export table in insert order.
var Columns = []string{"seq", "id", "entry_date", "product_name", "lot_no", "registered_at", "details"}

// SQLExporter writes records into Table. Each export replaces the table
// contents, so running it twice leaves one copy of the history.
type SQLExporter struct {
	DB      *sql.DB
	Dialect util.Dialect
	Table   string
	Logger  *zap.SugaredLogger
}

func (e *SQLExporter) table() (string, error) {
	t := e.Table
	if t == "" {
		t = DefaultTable
	}
	if !identRe.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, t)
	}
	return e.Dialect.QuoteIdent(t), nil
}

// CreateSQL returns the statement creating the export table.
func (e *SQLExporter) CreateSQL() (string, error) {
	t, err := e.table()
	if err != nil {
		return "", err
	}
	return "CREATE TABLE IF NOT EXISTS " + t + " (" +
		"seq INTEGER NOT NULL, " +
		"id VARCHAR(64) NOT NULL, " +
		"entry_date VARCHAR(10) NOT NULL, " +
		"product_name VARCHAR(255) NOT NULL, " +
		"lot_no VARCHAR(255) NOT NULL, " +
		"registered_at VARCHAR(40) NOT NULL, " +
		"details TEXT NOT NULL)", nil
}

// InsertSQL returns the parameterized insert statement.
func (e *SQLExporter) InsertSQL() (string, error) {
	t, err := e.table()
	if err != nil {
		return "", err
	}
	ph := make([]string, len(Columns))
	for i := range Columns {
		ph[i] = e.Dialect.Placeholder(i + 1)
	}
	return "INSERT INTO " + t + " (" + strings.Join(Columns, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")", nil
}

// Export replaces the table contents with recs and returns the number of
// rows written.
func (e *SQLExporter) Export(ctx context.Context, recs []record.Record) (n int, err error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	t, err := e.table()
	if err != nil {
		return 0, err
	}
	create, _ := e.CreateSQL()
	insert, _ := e.InsertSQL()

	if _, err := e.DB.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", t, err)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
		return 0, fmt.Errorf("clear %s: %w", t, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range recs {
		args, aerr := row(i+1, r)
		if aerr != nil {
			err = aerr
			return 0, err
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	logger.Infow("records exported", "table", t, "rows", len(recs))
	return len(recs), nil
}

func row(seq int, r record.Record) ([]any, error) {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return nil, fmt.Errorf("record %d details: %w", seq, err)
	}
	return []any{
		seq,
		r.ID,
		r.EntryDate,
		r.ProductName,
		r.LotNo,
		r.RegisteredAt.Format(time.RFC3339Nano),
		string(details),
	}, nil
}
