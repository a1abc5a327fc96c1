package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS request_journal").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS request_journal").WillReturnError(errors.New("permission denied"))

	err := store.Migrate(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestRecord(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO request_journal").
		WithArgs("req-1", "/api/recipe", "extended", 400, "validation", int64(3), created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Record(context.Background(), Entry{
		RequestID:  "req-1",
		Route:      "/api/recipe",
		Profile:    "extended",
		Status:     400,
		ErrorKind:  "validation",
		DurationMS: 3,
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO request_journal").
		WithArgs("req-2", "/api/recipe/suggestions", "", 200, "", int64(10), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Record(context.Background(), Entry{RequestID: "req-2", Route: "/api/recipe/suggestions", Status: 200, DurationMS: 10})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO request_journal").WillReturnError(errors.New("connection reset"))

	err := store.Record(context.Background(), Entry{RequestID: "req-3"})
	assert.ErrorContains(t, err, "failed to record request")
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Entry{}))
}
