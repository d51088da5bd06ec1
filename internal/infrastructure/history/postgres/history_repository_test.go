package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*HistoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &HistoryRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestAppendInsertsRecord(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	askedAt := time.Now().UTC()
	mock.ExpectExec("INSERT INTO query_history").
		WithArgs("rec-1", "u1", "warranty", "гарантийный срок", 3, askedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), domain.QueryRecord{
		ID:       "rec-1",
		UserID:   "u1",
		Category: "warranty",
		Query:    "гарантийный срок",
		Results:  3,
		AskedAt:  askedAt,
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentScansRows(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	askedAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "category", "query", "results", "asked_at"}).
		AddRow("rec-2", "u1", "warranty", "возврат", 2, askedAt).
		AddRow("rec-1", "u1", "warranty", "гарантия", 3, askedAt.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, user_id, category, query, results, asked_at").
		WithArgs("u1", 5).
		WillReturnRows(rows)

	records, err := repo.ListRecent(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "rec-2" || records[1].Query != "гарантия" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentDefaultsLimit(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, category, query, results, asked_at").
		WithArgs("u1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category", "query", "results", "asked_at"}))

	records, err := repo.ListRecent(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendWrapsDriverError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_history").
		WillReturnError(errors.New("connection reset"))

	err := repo.Append(context.Background(), domain.QueryRecord{ID: "rec-1", AskedAt: time.Now()})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
