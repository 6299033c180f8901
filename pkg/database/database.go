package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"

	AdsTable = "advertisements"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

var schemas = map[string]string{
	DriverMySQL: `
		CREATE TABLE IF NOT EXISTS advertisements (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(50) NOT NULL,
			description VARCHAR(50) NOT NULL,
			created_at VARCHAR(50) NOT NULL,
			author VARCHAR(50) NOT NULL
		)`,
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS advertisements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title VARCHAR(50) NOT NULL,
			description VARCHAR(50) NOT NULL,
			created_at VARCHAR(50) NOT NULL,
			author VARCHAR(50) NOT NULL
		)`,
}

func NewDatabase(driver, dsn string) (*sql.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, errors.Wrap(ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return db, nil
}

// Migrate creates the advertisements table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, ok := schemas[driver]
	if !ok {
		return errors.Wrap(ErrUnsupportedDriver, driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create advertisements table")
	}
	return nil
}

func DropSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+AdsTable); err != nil {
		return errors.Wrap(err, "failed to drop advertisements table")
	}
	return nil
}
