package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/faciam-dev/gcform/pkg/util"
)

// Open connects to dsn. An empty driver is detected from the DSN scheme.
// The caller must import the database/sql driver.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, util.Dialect, error) {
	if driver == "" {
		d, err := util.DetectDriver(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("detect driver: %w", err)
		}
		driver = d
	}
	dialect, err := util.DialectFromDriver(driver)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(driver, util.DriverDSN(driver, dsn))
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, dialect, nil
}
