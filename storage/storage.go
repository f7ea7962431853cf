// Package storage selects and opens the configured response store.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/services/metrics"
	"github.com/trezcool/fdpfeedback/storage/csvfile"
	"github.com/trezcool/fdpfeedback/storage/database"
	sqlxrepos "github.com/trezcool/fdpfeedback/storage/database/sqlx"
	inmemdb "github.com/trezcool/fdpfeedback/storage/inmem"
	"github.com/trezcool/fdpfeedback/storage/sheets"
)

// CloseFunc releases the resources held by a store.
type CloseFunc func() error

func noopClose() error { return nil }

// Open opens the store of the configured backend. SQL backends are created and migrated if needed.
func Open(ctx context.Context, conf *core.Config) (feedback.Store, CloseFunc, error) {
	var store feedback.Store
	closeFn := CloseFunc(noopClose)

	switch conf.Store.Backend {
	case core.BackendMemory:
		store = inmemdb.NewStore()

	case core.BackendCSV:
		s, err := csvfile.Open(conf.Store.CSVPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening csv store")
		}
		store = s

	case core.BackendSheets:
		sc := conf.Store.Sheets
		s, err := sheets.Open(ctx, sc.SpreadsheetID, sc.SheetName, sheets.ClientOptions(sc.Credentials)...)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening sheets store")
		}
		store = s

	case core.BackendPostgres, core.BackendSQLite:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening database")
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store = sqlxrepos.NewResponseStore(db)
		closeFn = db.Close

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", conf.Store.Backend)
	}

	return Instrument(store, conf.Store.Backend), closeFn, nil
}

type instrumentedStore struct {
	feedback.Store
	backend string
}

// Instrument records the latency and outcome of every store call.
func Instrument(store feedback.Store, backend string) feedback.Store {
	return &instrumentedStore{Store: store, backend: backend}
}

func (s *instrumentedStore) Append(ctx context.Context, r feedback.Response) error {
	start := time.Now()
	err := s.Store.Append(ctx, r)
	metrics.ObserveStoreOperation(s.backend, "append", time.Since(start), err)
	return err
}

func (s *instrumentedStore) ReadAll(ctx context.Context) ([]feedback.Response, error) {
	start := time.Now()
	responses, err := s.Store.ReadAll(ctx)
	metrics.ObserveStoreOperation(s.backend, "read_all", time.Since(start), err)
	return responses, err
}
