package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"thermostat_triggers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newDeviceMock(t *testing.T) (*DeviceSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDeviceSQLite(db), mock
}

func deviceRows(id int, ain, name string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "ain", "name", "created_at", "updated_at"}).
		AddRow(id, ain, name, now, now)
}

func TestDeviceGetByAIN(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDeviceByAINSQL)).
		WithArgs("11962 0785015").
		WillReturnRows(deviceRows(1, "11962 0785015", "Living Room"))

	got, err := repo.GetByAIN(context.Background(), "11962 0785015")
	if err != nil {
		t.Fatalf("GetByAIN: %v", err)
	}
	if got == nil || got.ID != 1 || got.Name != "Living Room" {
		t.Fatalf("unexpected device: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceGetByAIN_NotFoundIsNil(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDeviceByAINSQL)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ain", "name", "created_at", "updated_at"}))

	got, err := repo.GetByAIN(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByAIN: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown AIN, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceCreate(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectExec(regexp.QuoteMeta(insertDeviceSQL)).
		WithArgs("11962 0785015", "Living Room", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	created, err := repo.Create(context.Background(), models.Device{AIN: "11962 0785015", Name: "Living Room"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected assigned id 7, got %d", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceUpdateName(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectExec(regexp.QuoteMeta(updateDeviceNameSQL)).
		WithArgs("Bedroom", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateName(context.Background(), 3, "Bedroom"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceCount(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(countDevicesSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceDelete(t *testing.T) {
	repo, mock := newDeviceMock(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteDeviceSQL)).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 9); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceGetByID_Error(t *testing.T) {
	repo, mock := newDeviceMock(t)

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta(selectDeviceByIDSQL)).
		WithArgs(1).
		WillReturnError(boom)

	if _, err := repo.GetByID(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
