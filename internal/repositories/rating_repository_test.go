package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"freelanceBack/internal/models"
)

func newRatingRepo(t *testing.T) (*RatingRepository, *UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &RatingRepository{DB: db}, &UserRepository{DB: db}, mock
}

func TestCreateRatingRecalculatesSellerAverage(t *testing.T) {
	repo, users, mock := newRatingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO ratings").
		WithArgs(42, 1, 2, 4, "solid work").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("AVG").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(4.5))
	mock.ExpectExec("UPDATE users SET rating").
		WithArgs(4.5, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rating, avg, err := repo.CreateRating(context.Background(), models.Rating{
		ProjectID: 42,
		BuyerID:   1,
		SellerID:  2,
		Value:     4,
		Comment:   "solid work",
	}, users)
	if err != nil {
		t.Fatalf("CreateRating: %v", err)
	}
	if rating.ID != 3 {
		t.Fatalf("expected rating id 3, got %d", rating.ID)
	}
	if avg != 4.5 {
		t.Fatalf("expected average 4.5, got %v", avg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateRatingRejectsSecondAttempt(t *testing.T) {
	repo, users, mock := newRatingRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, _, err := repo.CreateRating(context.Background(), models.Rating{
		ProjectID: 42, BuyerID: 1, SellerID: 2, Value: 5,
	}, users)
	if !errors.Is(err, models.ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
}

func TestCreateRatingDuplicateKeyRace(t *testing.T) {
	repo, users, mock := newRatingRepo(t)

	// two submissions pass the pre-check; the unique key stops the second insert
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(42, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO ratings").
		WithArgs(42, 1, 2, 5, "").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, _, err := repo.CreateRating(context.Background(), models.Rating{
		ProjectID: 42, BuyerID: 1, SellerID: 2, Value: 5,
	}, users)
	if !errors.Is(err, models.ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
}
