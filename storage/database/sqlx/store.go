package sqlxrepos

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/storage/database"
)

type responseRow struct {
	ID          int64  `db:"id"`
	SubmittedAt string `db:"submitted_at"`
	Name        string `db:"name"`
	Department  string `db:"department"`
	Mobile      string `db:"mobile"`
	Email       string `db:"email"`
	Q1          int    `db:"q1"`
	Q2          int    `db:"q2"`
	Q3          int    `db:"q3"`
	Q4          int    `db:"q4"`
	Q5          int    `db:"q5"`
	Q6          int    `db:"q6"`
	Q7          int    `db:"q7"`
	Q8          int    `db:"q8"`
	Q9          int    `db:"q9"`
	Q10         int    `db:"q10"`
}

func (row *responseRow) ratings() []*int {
	return []*int{&row.Q1, &row.Q2, &row.Q3, &row.Q4, &row.Q5, &row.Q6, &row.Q7, &row.Q8, &row.Q9, &row.Q10}
}

func (row *responseRow) values() []string {
	vals := []string{row.SubmittedAt, row.Name, row.Department, row.Mobile, row.Email}
	for _, q := range row.ratings() {
		vals = append(vals, strconv.Itoa(*q))
	}
	return vals
}

const (
	insertQuery = `INSERT INTO ` + database.TableName + ` (
		submitted_at, name, department, mobile, email, q1, q2, q3, q4, q5, q6, q7, q8, q9, q10
	) VALUES (
		:submitted_at, :name, :department, :mobile, :email, :q1, :q2, :q3, :q4, :q5, :q6, :q7, :q8, :q9, :q10
	)`

	selectQuery = `SELECT
		id, submitted_at, name, department, mobile, email, q1, q2, q3, q4, q5, q6, q7, q8, q9, q10
	FROM ` + database.TableName + ` ORDER BY id`
)

type responseStore struct {
	db      *sqlx.DB
	backend string
}

var _ feedback.Store = (*responseStore)(nil) // interface compliance check

func NewResponseStore(db *sqlx.DB) *responseStore {
	backend := core.BackendSQLite
	if db.DriverName() == database.DriverPostgres {
		backend = core.BackendPostgres
	}
	return &responseStore{db: db, backend: backend}
}

func (s *responseStore) Append(ctx context.Context, r feedback.Response) error {
	row := responseRow{
		SubmittedAt: r.FormattedTimestamp(),
		Name:        r.Name,
		Department:  r.Department,
		Mobile:      r.Mobile,
		Email:       r.Email,
	}
	for i, q := range row.ratings() {
		if i < len(r.Ratings) {
			*q = r.Ratings[i]
		}
	}

	if _, err := s.db.NamedExecContext(ctx, insertQuery, row); err != nil {
		return core.NewStoreError(core.Unwritable, s.backend, err)
	}
	return nil
}

func (s *responseStore) ReadAll(ctx context.Context) ([]feedback.Response, error) {
	var rows []responseRow
	if err := s.db.SelectContext(ctx, &rows, selectQuery); err != nil {
		return nil, core.NewStoreError(core.Unreadable, s.backend, err)
	}

	responses := make([]feedback.Response, 0, len(rows))
	for i := range rows {
		r, err := feedback.ParseRow(i+1, rows[i].values())
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, nil
}
