package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

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

	q := `(?s)^INSERT\s+INTO\s+images\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	mock.ExpectExec(q).
		WithArgs("img1", "s1", "d1", "photo.png", "s1/img1_photo.png").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Image{
		ID: "img1", SessionID: "s1", DeviceID: "d1",
		FileName: "photo.png", StorageKey: "s1/img1_photo.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+images\b`

	mock.ExpectExec(q).
		WithArgs("img1", "s1", "d1", "photo.png", "key").
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Image{
		ID: "img1", SessionID: "s1", DeviceID: "d1",
		FileName: "photo.png", StorageKey: "key",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestListBySession(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+images\s+WHERE\s+session_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "device_id", "file_name", "storage_key", "created_at"}).
		AddRow("img2", "s1", "d1", "b.png", "s1/img2_b.png", now).
		AddRow("img1", "s1", "d1", "a.png", "s1/img1_a.png", now.Add(-time.Hour))

	mock.ExpectQuery(q).WithArgs("s1").WillReturnRows(rows)

	got, err := repo.ListBySession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "img2" || got[1].FileName != "a.png" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
