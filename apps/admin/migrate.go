package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/storage/database"
)

var migrateFunc = migrateDatabase // mockable

func migrateDatabase(ctx context.Context, conf *core.Config) error {
	if err := database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()
	return database.Migrate(ctx, db)
}

func (cli *commandLine) migrate() error {
	switch cli.conf.Store.Backend {
	case core.BackendPostgres, core.BackendSQLite:
	default:
		return fmt.Errorf("%q store has no schema to migrate", cli.conf.Store.Backend)
	}
	if err := migrateFunc(context.Background(), cli.conf); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%s schema is up to date\n", cli.conf.Store.Backend)
	return nil
}
