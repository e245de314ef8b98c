package util

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Dialect renders the driver specific parts of a SQL statement.
type Dialect interface {
	Placeholder(n int) string
	QuoteIdent(ident string) string
}

// PostgresDialect uses $n placeholders and double quoted identifiers.
type PostgresDialect struct{}

func (PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (PostgresDialect) QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// MySQLDialect uses ? placeholders and backtick quoted identifiers.
type MySQLDialect struct{}

func (MySQLDialect) Placeholder(int) string { return "?" }

func (MySQLDialect) QuoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// SQLiteDialect uses ? placeholders and double quoted identifiers.
type SQLiteDialect struct{}

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) QuoteIdent(ident string) string {
	return PostgresDialect{}.QuoteIdent(ident)
}

// DetectDriver returns the driver name based on the DSN scheme.
// Supported schemes: postgres/postgresql, mysql and sqlite/file.
func DetectDriver(dsn string) (string, error) {
	parsedURL, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	switch parsedURL.Scheme {
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3", "file":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unknown scheme: %s", parsedURL.Scheme)
	}
}

// DriverDSN strips the scheme from dsn where the driver expects a bare
// connection string. lib/pq accepts URLs as they are.
func DriverDSN(driver, dsn string) string {
	switch driver {
	case "mysql":
		return strings.TrimPrefix(dsn, "mysql://")
	case "sqlite3":
		for _, p := range []string{"sqlite3://", "sqlite://"} {
			if strings.HasPrefix(dsn, p) {
				return strings.TrimPrefix(dsn, p)
			}
		}
	}
	return dsn
}

// DialectFromDriver returns the dialect corresponding to a driver.
func DialectFromDriver(d string) (Dialect, error) {
	switch d {
	case "postgres":
		return PostgresDialect{}, nil
	case "mysql":
		return MySQLDialect{}, nil
	case "sqlite3", "sqlite":
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", d)
	}
}
