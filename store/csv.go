package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/use-agent/docscout/models"
)

// CSVStore appends rows to a single CSV file with a fixed header.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSV opens the CSV store at path, writing the header when the file is
// missing or empty.
func NewCSV(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, storeErr("open csv", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, storeErr("stat csv", err)
	}
	if info.Size() > 0 {
		return s, nil
	}

	w := csv.NewWriter(f)
	if err := csvutil.NewEncoder(w).EncodeHeader(models.Row{}); err != nil {
		return nil, storeErr("write csv header", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, storeErr("write csv header", err)
	}
	return s, nil
}

// Append writes rows at the end of the file.
func (s *CSVStore) Append(_ context.Context, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return storeErr("open csv", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false
	if err := enc.Encode(rows); err != nil {
		return storeErr("append csv", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storeErr("append csv", err)
	}
	return nil
}

// Cities reads the city column of every stored row.
func (s *CSVStore) Cities(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(map[string]struct{})
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return done, nil
	}
	if err != nil {
		return nil, storeErr("open csv", err)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if errors.Is(err, io.EOF) {
		return done, nil
	}
	if err != nil {
		return nil, storeErr("read csv header", err)
	}
	for {
		var r models.Row
		if err := dec.Decode(&r); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, storeErr("read csv", err)
		}
		if r.City != "" {
			done[r.City] = struct{}{}
		}
	}
	return done, nil
}

// Close is a no-op; the file is opened per call.
func (s *CSVStore) Close() error { return nil }

func storeErr(op string, err error) error {
	return models.NewScrapeError(models.ErrCodeStore, op, fmt.Errorf("store: %s: %w", op, err))
}
