package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newConversationRepo(t *testing.T) (*ConversationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &ConversationRepository{DB: db}, mock
}

func TestFindByPairChecksBothOrderings(t *testing.T) {
	repo, mock := newConversationRepo(t)

	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user1_id", "user2_id", "last_message", "last_updated", "created_at"}).
		AddRow(3, 2, 1, "hi", nil, created)
	// the stored row has the users in the opposite order from the lookup
	mock.ExpectQuery("FROM conversations").
		WithArgs(1, 2, 2, 1).
		WillReturnRows(rows)

	c, err := repo.FindByPair(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("FindByPair: %v", err)
	}
	if c.ID != 3 {
		t.Fatalf("expected conversation 3, got %d", c.ID)
	}
	if !c.HasParticipant(1) || !c.HasParticipant(2) {
		t.Fatal("both users must be participants")
	}
}

func TestFindByPairMissingReturnsZero(t *testing.T) {
	repo, mock := newConversationRepo(t)

	mock.ExpectQuery("FROM conversations").
		WithArgs(1, 2, 2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user1_id", "user2_id", "last_message", "last_updated", "created_at"}))

	c, err := repo.FindByPair(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("FindByPair: %v", err)
	}
	if c.ID != 0 {
		t.Fatalf("expected zero conversation, got id %d", c.ID)
	}
}

func TestCreateConversationDuplicateFallsBackToLookup(t *testing.T) {
	repo, mock := newConversationRepo(t)

	mock.ExpectExec("INSERT INTO conversations").
		WithArgs(1, 2).
		WillReturnError(errors.New("Error 1062: Duplicate entry '1-2' for key 'pair'"))

	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user1_id", "user2_id", "last_message", "last_updated", "created_at"}).
		AddRow(7, 2, 1, "", nil, created)
	mock.ExpectQuery("FROM conversations").
		WithArgs(1, 2, 2, 1).
		WillReturnRows(rows)

	c, err := repo.CreateConversation(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if c.ID != 7 {
		t.Fatalf("expected existing conversation 7, got %d", c.ID)
	}
}

func TestCreateConversationNormalizesPairOrder(t *testing.T) {
	repo, mock := newConversationRepo(t)

	// reversed arguments must insert (low, high) so the unique key blocks a
	// concurrent create of the same pair in the other order
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(5, 1))

	c, err := repo.CreateConversation(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if c.User1ID != 1 || c.User2ID != 2 {
		t.Fatalf("expected normalized pair (1, 2), got (%d, %d)", c.User1ID, c.User2ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
