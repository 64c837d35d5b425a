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

func newLogMock(t *testing.T) (*LogSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLogSQLite(db), mock
}

func intPtr(v int) *int { return &v }

func TestRecordExecution_DisablesTriggerInSameTransaction(t *testing.T) {
	repo, mock := newLogMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertLogSQL)).
		WithArgs(sqlmock.AnyArg(), 1, 5, 18.0, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(disableLoggedTriggerSQL)).
		WithArgs(sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordExecution(context.Background(), models.TriggerLog{
		DeviceID:    1,
		TriggerID:   intPtr(5),
		Temperature: 18,
	}, true)
	if err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordExecution_RecurringLeavesTriggerEnabled(t *testing.T) {
	repo, mock := newLogMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertLogSQL)).
		WithArgs(sqlmock.AnyArg(), 1, 5, 18.0, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordExecution(context.Background(), models.TriggerLog{
		DeviceID:    1,
		TriggerID:   intPtr(5),
		Temperature: 18,
		NoOp:        true,
	}, false)
	if err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecordExecution_RollsBackOnInsertError(t *testing.T) {
	repo, mock := newLogMock(t)

	boom := errors.New("constraint failed")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertLogSQL)).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.RecordExecution(context.Background(), models.TriggerLog{
		DeviceID:    1,
		TriggerID:   intPtr(5),
		Temperature: 18,
	}, true)
	if !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCountForTriggerSince(t *testing.T) {
	repo, mock := newLogMock(t)
	threshold := time.Date(2025, 3, 5, 6, 29, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(countLogsSinceSQL)).
		WithArgs(5, threshold).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountForTriggerSince(context.Background(), 5, threshold)
	if err != nil {
		t.Fatalf("CountForTriggerSince: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLogList(t *testing.T) {
	repo, mock := newLogMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "device_id", "trigger_id", "temperature", "no_op", "created_at"}).
		AddRow("log-1", 1, 5, 18.0, false, now).
		AddRow("log-2", 1, nil, 0.0, true, now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta(selectLogsSQL)).
		WithArgs(100).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].TriggerID == nil || *logs[0].TriggerID != 5 {
		t.Fatalf("expected trigger id 5, got %+v", logs[0])
	}
	if logs[1].TriggerID != nil {
		t.Fatalf("manual executions carry no trigger id: %+v", logs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestLogListForTrigger(t *testing.T) {
	repo, mock := newLogMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "device_id", "trigger_id", "temperature", "no_op", "created_at"}).
		AddRow("log-1", 1, 5, 18.0, false, now)
	mock.ExpectQuery(regexp.QuoteMeta(selectLogsForTriggerSQL)).
		WithArgs(5, 20).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), 5, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteForTrigger(t *testing.T) {
	repo, mock := newLogMock(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteLogsForTriggerSQL)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteForTrigger(context.Background(), 5); err != nil {
		t.Fatalf("DeleteForTrigger: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
