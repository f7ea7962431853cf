package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
)

// Driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// TableName holds one row per feedback.Response; id preserves the append order.
const TableName = "feedback_responses"

func openPostgres(dbName string, conf *core.Config) (*sqlx.DB, error) {
	dbConf := conf.Store.Database
	user := url.UserPassword(dbConf.User, dbConf.Password)

	sslMode := "require"
	if dbConf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   DriverPostgres,
		User:     user,
		Host:     dbConf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(DriverPostgres, u.String())
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite db")
	}
	return db, nil
}

// Open opens the database of the configured SQL backend and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch conf.Store.Backend {
	case core.BackendPostgres:
		db, err = openPostgres(conf.Store.Database.Name, conf)
	case core.BackendSQLite:
		db, err = OpenSQLite(conf.Store.Database.Path)
	default:
		return nil, fmt.Errorf("%q is not a SQL backend", conf.Store.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	var exists bool
	err := db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Store.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}

	if !exists {
		// identifiers cannot be bound
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Store.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the Postgres database of the configured user. It is a noop for SQLite.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Store.Backend != core.BackendPostgres {
		return nil
	}

	db, err := openPostgres("postgres", conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	return createDB(db, conf)
}

func schema(driver string) string {
	idCol := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	ratingType := "INTEGER"
	if driver == DriverPostgres {
		idCol = "id BIGSERIAL PRIMARY KEY"
		ratingType = "SMALLINT"
	}

	cols := []string{
		idCol,
		"submitted_at TEXT NOT NULL",
		"name TEXT NOT NULL",
		"department TEXT NOT NULL",
		"mobile TEXT NOT NULL",
		"email TEXT NOT NULL",
	}
	for i := 1; i <= feedback.NumQuestions; i++ {
		cols = append(cols, fmt.Sprintf(
			"q%d %s NOT NULL CHECK (q%d BETWEEN %d AND %d)",
			i, ratingType, i, feedback.MinRating, feedback.MaxRating,
		))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", TableName, strings.Join(cols, ",\n\t"))
}

// Migrate creates the responses table if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema(db.DriverName())); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
