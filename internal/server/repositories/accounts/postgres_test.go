package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/secrets/internal/common"
	"github.com/dmitrijs2005/secrets/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountRowColumns = []string{"id", "email", "password", "externalid", "idsource", "secret", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+accounts\s*\(email,\s*password,\s*externalid,\s*idsource\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at$`

func TestCreate_Local(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "hash", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	got, err := repo.Create(context.Background(), &models.Account{Email: "a@x.com", StoredSecret: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Federated(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ext, src := "g-123", "Google"
	mock.ExpectQuery(insertQ).
		WithArgs("b@x.com", "placeholder", "g-123", "Google").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), time.Now()))

	got, err := repo.Create(context.Background(), &models.Account{
		Email: "b@x.com", StoredSecret: "placeholder", ExternalID: &ext, IDSource: &src,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), got.ID)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "hash", nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{Email: "a@x.com", StoredSecret: "hash"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{Email: "a@x.com", StoredSecret: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*password,\s*externalid,\s*idsource,\s*secret,\s*created_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).
			AddRow(int64(1), "a@x.com", "pw1", nil, nil, "my secret", time.Now()))

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "pw1", got.StoredSecret)
	assert.Nil(t, got.ExternalID)
	assert.Nil(t, got.IDSource)
	require.NotNil(t, got.Secret)
	assert.Equal(t, "my secret", *got.Secret)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByExternalID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+accounts\s+WHERE\s+externalid\s*=\s*\$1\s+AND\s+idsource\s*=\s*\$2$`
	mock.ExpectQuery(q).
		WithArgs("g-123", "Google").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).
			AddRow(int64(3), "b@x.com", "x", "g-123", "Google", nil, time.Now()))

	got, err := repo.GetByExternalID(context.Background(), "Google", "g-123")
	require.NoError(t, err)
	assert.True(t, got.IsFederated())
	assert.Equal(t, "g-123", *got.ExternalID)
	assert.Nil(t, got.Secret)
}

func TestSetSecret(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+accounts\s+SET\s+secret\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs("i like tea", int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("x", int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("x", int64(1)).WillReturnError(errors.New("db err"))

	require.NoError(t, repo.SetSecret(context.Background(), 1, "i like tea"))
	assert.ErrorIs(t, repo.SetSecret(context.Background(), 99, "x"), common.ErrorNotFound)
	assert.Error(t, repo.SetSecret(context.Background(), 1, "x"))
}

func TestListSecrets(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s+secret\s+FROM\s+accounts\s+WHERE\s+secret\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+id$`
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"secret"}).AddRow("one").AddRow("two"))

	got, err := repo.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)

	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"secret"}))
	got, err = repo.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(q).WillReturnError(errors.New("db err"))
	_, err = repo.ListSecrets(context.Background())
	assert.Error(t, err)
}
