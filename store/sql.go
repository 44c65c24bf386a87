package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/use-agent/docscout/models"
)

// SQLStore keeps rows in a doctor_rows table on SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQL opens the database for driver ("sqlite" or "postgres") and checks
// the connection.
func NewSQL(driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, storeErr(driver+" open", err)
	}

	switch driver {
	case DriverSQLite:
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, storeErr("sqlite exec "+pragma, err)
			}
		}
	case DriverPostgres:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storeErr(driver+" ping", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// Migrate creates the rows table and its city index.
func (s *SQLStore) Migrate(ctx context.Context) error {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		id = "id SERIAL PRIMARY KEY"
	}
	cols := make([]string, 0, len(models.RowHeader)+2)
	cols = append(cols, id)
	for _, c := range models.RowHeader {
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	cols = append(cols, "scraped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP")

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS doctor_rows (\n\t" + strings.Join(cols, ",\n\t") + "\n)",
		"CREATE INDEX IF NOT EXISTS idx_doctor_rows_city ON doctor_rows (city)",
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return storeErr(s.driver+" migrate", err)
		}
	}
	return nil
}

// Append inserts rows in one transaction.
func (s *SQLStore) Append(ctx context.Context, rows []models.Row) (err error) {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(s.driver+" begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertQuery(s.driver))
	if err != nil {
		return storeErr(s.driver+" prepare", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx, r.Values()...); err != nil {
			return storeErr(s.driver+" insert", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return storeErr(s.driver+" commit", err)
	}
	return nil
}

// Cities returns the distinct stored city values.
func (s *SQLStore) Cities(ctx context.Context) (map[string]struct{}, error) {
	rs, err := s.db.QueryContext(ctx, "SELECT DISTINCT city FROM doctor_rows")
	if err != nil {
		return nil, storeErr(s.driver+" cities", err)
	}
	defer rs.Close()

	done := make(map[string]struct{})
	for rs.Next() {
		var c string
		if err := rs.Scan(&c); err != nil {
			return nil, storeErr(s.driver+" cities", err)
		}
		if c != "" {
			done[c] = struct{}{}
		}
	}
	if err := rs.Err(); err != nil {
		return nil, storeErr(s.driver+" cities", err)
	}
	return done, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// insertQuery builds the row insert with the driver's placeholder style.
func insertQuery(driver string) string {
	marks := make([]string, len(models.RowHeader))
	for i := range marks {
		if driver == DriverPostgres {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return "INSERT INTO doctor_rows (" + strings.Join(models.RowHeader, ", ") +
		") VALUES (" + strings.Join(marks, ", ") + ")"
}
