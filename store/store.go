// Package store persists scraped rows and reports which cities are done.
package store

import (
	"context"
	"fmt"

	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/models"
)

// Store is the durable row store of the crawl pipeline.
type Store interface {
	// Append persists the rows of one completed city.
	Append(ctx context.Context, rows []models.Row) error

	// Cities returns the distinct city values already stored.
	Cities(ctx context.Context) (map[string]struct{}, error)

	Close() error
}

// Drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates the store selected by cfg and prepares it for writing.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverCSV, "":
		return NewCSV(cfg.Path)
	case DriverSQLite, DriverPostgres:
		s, err := NewSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown store driver %q", cfg.Driver), nil)
	}
}
