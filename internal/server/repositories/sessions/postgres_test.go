package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ        = `(?s)INSERT\s+INTO\s+sessions\s*\(id,\s*account_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at`
	selectQ        = `(?s)SELECT\s+id,\s*account_id,\s*expires_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1`
	deleteQ        = `(?s)DELETE\s+FROM\s+sessions\s+WHERE\s+id\s*=\s*\$1`
	deleteExpiredQ = `(?s)DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<=\s*\$1`
)

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	created := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs("sid-1", int64(5), exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	s := &models.Session{ID: "sid-1", AccountID: 5, ExpiresAt: exp}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, created, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))

	err := repo.Create(context.Background(), &models.Session{ID: "sid-1", AccountID: 5, ExpiresAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestPostgres_Find(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	created := time.Now()
	mock.ExpectQuery(selectQ).
		WithArgs("sid-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "expires_at", "created_at"}).
			AddRow("sid-1", int64(5), exp, created))

	s, err := repo.Find(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, &models.Session{ID: "sid-1", AccountID: 5, ExpiresAt: exp, CreatedAt: created}, s)
}

func TestPostgres_Find_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("sid-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQ).WithArgs("sid-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "sid-1"))
	require.NoError(t, repo.Delete(context.Background(), "sid-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(deleteExpiredQ).WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
