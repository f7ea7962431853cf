package sqlxrepos

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/fdpfeedback/core"
	"github.com/trezcool/fdpfeedback/core/feedback"
	"github.com/trezcool/fdpfeedback/storage/database"
	"github.com/trezcool/fdpfeedback/tests"
)

var t0 = time.Date(2024, 12, 5, 10, 30, 0, 0, feedback.IST)

func prepareDB(t *testing.T) *sqlx.DB {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func TestResponseStore(t *testing.T) {
	s := NewResponseStore(prepareDB(t))
	assert.Equal(t, core.BackendSQLite, s.backend)

	responses, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, responses)
	assert.Empty(t, responses)

	r1 := testutil.CreateResponse(t, s, "Asha", t0, 5, 4, 3, 2, 1, 1, 2, 3, 4, 5)
	r2 := testutil.CreateResponse(t, s, "Ravi", t0.Add(time.Hour), 3)

	responses, err = s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.True(t, responses[0].Equal(r1))
	assert.True(t, responses[1].Equal(r2))
}

func TestResponseStore_rejectsInvalidRatings(t *testing.T) {
	db := prepareDB(t)
	s := NewResponseStore(db)

	r := testutil.NewResponse("Asha", t0, 3)
	r.Ratings[4] = 9
	err := s.Append(context.Background(), r)
	assert.True(t, core.IsStoreError(err, core.Unwritable))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM "+database.TableName))
	assert.Equal(t, 0, count, "no partial row")
}

func TestResponseStore_closedDB(t *testing.T) {
	db := prepareDB(t)
	s := NewResponseStore(db)
	require.NoError(t, db.Close())

	err := s.Append(context.Background(), testutil.NewResponse("Asha", t0, 3))
	assert.True(t, core.IsStoreError(err, core.Unwritable))

	_, err = s.ReadAll(context.Background())
	assert.True(t, core.IsStoreError(err, core.Unreadable))
}

func TestResponseStore_schemaMismatch(t *testing.T) {
	db := prepareDB(t)
	s := NewResponseStore(db)
	testutil.CreateResponse(t, s, "Asha", t0, 4)

	_, err := db.Exec("UPDATE " + database.TableName + " SET submitted_at = 'yesterday'")
	require.NoError(t, err)

	_, err = s.ReadAll(context.Background())
	var smErr *core.SchemaMismatchError
	require.ErrorAs(t, err, &smErr)
	assert.Equal(t, 1, smErr.Row)
}
