package devices

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/githuba42r/imagetools/internal/common"
	"github.com/githuba42r/imagetools/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+devices\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`

	mock.ExpectExec(q).
		WithArgs("d1", "s1", "laptop", "1.2.0", models.DeviceKindOAuth, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Device{
		ID: "d1", SessionID: "s1", Name: "laptop",
		ClientVersion: "1.2.0", Kind: models.DeviceKindOAuth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+devices\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "name", "client_version", "kind", "long_term_secret_hash", "revoked",
	}).AddRow("d1", "s1", "laptop", "1.2.0", models.DeviceKindOAuth, "", false)

	mock.ExpectQuery(q).WithArgs("d1").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "d1" || got.SessionID != "s1" || got.Revoked {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+devices\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByLongTermSecretHash_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+devices\s+WHERE\s+long_term_secret_hash\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{
		"id", "session_id", "name", "client_version", "kind", "long_term_secret_hash", "revoked",
	}).AddRow("d2", "s1", "phone", "", models.DeviceKindLegacy, "abc123", false)

	mock.ExpectQuery(q).WithArgs("abc123").WillReturnRows(rows)

	got, err := repo.GetByLongTermSecretHash(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != models.DeviceKindLegacy || got.LongTermSecretHash != "abc123" {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestRevoke_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+devices\s+SET\s+revoked\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke(context.Background(), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRevoke_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+devices\s+SET\s+revoked\s*=\s*TRUE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("d1").WillReturnError(errors.New("db down"))

	if err := repo.Revoke(context.Background(), "d1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
