package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"freelanceBack/internal/fsm"
	"freelanceBack/internal/models"
	"freelanceBack/internal/repositories"
)

var projectTestColumns = []string{
	"id", "buyer_id", "title", "description", "budget", "currency", "deadline",
	"status", "progress", "selected_bid_id", "reminder_sent", "created_at", "updated_at",
}

var bidTestColumns = []string{"id", "project_id", "seller_id", "amount", "duration_days", "message", "created_at"}

func newProjectService(t *testing.T) (*ProjectService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &ProjectService{
		ProjectRepo:     &repositories.ProjectRepository{DB: db},
		BidRepo:         &repositories.BidRepository{DB: db},
		DeliverableRepo: &repositories.DeliverableRepository{DB: db},
		RatingRepo:      &repositories.RatingRepository{DB: db},
		UserRepo:        &repositories.UserRepository{DB: db},
	}, mock
}

func projectRow(id, buyerID int, status string, selectedBidID any) *sqlmock.Rows {
	created := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	deadline := created.AddDate(0, 1, 0)
	return sqlmock.NewRows(projectTestColumns).
		AddRow(id, buyerID, "landing page", "build it", 500.0, "USD", deadline, status, 0, selectedBidID, false, created, nil)
}

func bidRow(id, projectID, sellerID int) *sqlmock.Rows {
	created := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(bidTestColumns).
		AddRow(id, projectID, sellerID, 450.0, 14, "can do", created)
}

func expectProject(mock sqlmock.Sqlmock, rows *sqlmock.Rows, id int) {
	mock.ExpectQuery("FROM projects WHERE id").WithArgs(id).WillReturnRows(rows)
}

func TestSelectSellerRequiresOwner(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusPending, nil), 42)

	_, err := svc.SelectSeller(context.Background(), 2, 42, 7)
	if !errors.Is(err, models.ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}
}

func TestSelectSellerRejectsForeignBid(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusPending, nil), 42)
	mock.ExpectQuery("FROM bids WHERE id").WithArgs(7).WillReturnRows(bidRow(7, 99, 3))

	_, err := svc.SelectSeller(context.Background(), 1, 42, 7)
	if !errors.Is(err, models.ErrBidProjectMismatch) {
		t.Fatalf("expected ErrBidProjectMismatch, got %v", err)
	}
}

func TestSelectSellerRequiresPending(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)

	_, err := svc.SelectSeller(context.Background(), 1, 42, 8)
	if !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateProgressRejectsHundred(t *testing.T) {
	svc, _ := newProjectService(t)

	// 100 is reserved for the deliverable upload
	_, err := svc.UpdateProgress(context.Background(), 3, 42, 100)
	if !errors.Is(err, models.ErrProgressOutOfRange) {
		t.Fatalf("expected ErrProgressOutOfRange, got %v", err)
	}

	_, err = svc.UpdateProgress(context.Background(), 3, 42, -1)
	if !errors.Is(err, models.ErrProgressOutOfRange) {
		t.Fatalf("expected ErrProgressOutOfRange, got %v", err)
	}
}

func TestUpdateProgressOnlySelectedSeller(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)
	mock.ExpectQuery("FROM bids WHERE id").WithArgs(7).WillReturnRows(bidRow(7, 42, 9))

	_, err := svc.UpdateProgress(context.Background(), 3, 42, 50)
	if !errors.Is(err, models.ErrNotSelectedSeller) {
		t.Fatalf("expected ErrNotSelectedSeller, got %v", err)
	}
}

func TestUploadDeliverableOnlySelectedSeller(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)
	mock.ExpectQuery("FROM bids WHERE id").WithArgs(7).WillReturnRows(bidRow(7, 42, 9))

	_, err := svc.UploadDeliverable(context.Background(), 3, 42, "https://files/42", "work.zip")
	if !errors.Is(err, models.ErrNotSelectedSeller) {
		t.Fatalf("expected ErrNotSelectedSeller, got %v", err)
	}
}

func TestCompleteRequiresSelectedSeller(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInReview, nil), 42)

	_, err := svc.CompleteProject(context.Background(), 1, 42)
	if !errors.Is(err, models.ErrNoSelectedSeller) {
		t.Fatalf("expected ErrNoSelectedSeller, got %v", err)
	}
}

func TestCompleteRejectedFromInProgress(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)

	_, err := svc.CompleteProject(context.Background(), 1, 42)
	if !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCancelCompletedProjectRejected(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusCompleted, 7), 42)

	_, err := svc.CancelProject(context.Background(), 1, 42)
	if !errors.Is(err, models.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestRequestChangesOnlyFromReview(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)

	_, err := svc.RequestChanges(context.Background(), 1, 42)
	if !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRateSellerValueRange(t *testing.T) {
	svc, _ := newProjectService(t)

	for _, value := range []int{0, 6, -3} {
		_, _, err := svc.RateSeller(context.Background(), 1, 42, value, "")
		if !errors.Is(err, models.ErrRatingOutOfRange) {
			t.Fatalf("value %d: expected ErrRatingOutOfRange, got %v", value, err)
		}
	}
}

func TestRateSellerRequiresCompletedProject(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusInReview, 7), 42)

	_, _, err := svc.RateSeller(context.Background(), 1, 42, 5, "great")
	if !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestUpdateDetailsIdenticalValuesIsNoOp(t *testing.T) {
	svc, mock := newProjectService(t)

	expectProject(mock, projectRow(42, 1, fsm.StatusPending, nil), 42)

	title := "landing page"
	project, err := svc.UpdateDetails(context.Background(), 1, 42, models.ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if project.Title != "landing page" {
		t.Fatalf("unexpected title %q", project.Title)
	}
	// no UPDATE was expected; a write here would fail the mock
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateProjectValidatesInput(t *testing.T) {
	svc, _ := newProjectService(t)

	_, err := svc.CreateProject(context.Background(), 1, models.Project{Title: "  ", Budget: 100, Deadline: time.Now()})
	if err == nil {
		t.Fatal("expected error for blank title")
	}
	_, err = svc.CreateProject(context.Background(), 1, models.Project{Title: "site", Budget: 0, Deadline: time.Now()})
	if err == nil {
		t.Fatal("expected error for zero budget")
	}
}

var userTestColumns = []string{"id", "name", "email", "role", "description", "avatar_path", "rating", "created_at", "updated_at"}

func userRow(id int, email, role string) *sqlmock.Rows {
	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userTestColumns).
		AddRow(id, "someone", email, role, "", "", 0.0, created, nil)
}

// recordingMailer captures deliveries so tests can assert on who got notified.
type recordingMailer struct {
	sent chan string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent <- to + " | " + subject
	return nil
}

func waitForMail(t *testing.T, m *recordingMailer) string {
	t.Helper()
	select {
	case got := <-m.sent:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notification")
		return ""
	}
}

func TestCompleteProjectNotifiesBuyerAndSeller(t *testing.T) {
	svc, mock := newProjectService(t)
	mailer := &recordingMailer{sent: make(chan string, 2)}
	svc.Mailer = mailer
	mock.MatchExpectationsInOrder(false)

	expectProject(mock, projectRow(42, 1, fsm.StatusInReview, 7), 42)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE projects SET status").
		WithArgs(fsm.StatusCompleted, 42, fsm.StatusInReview).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM bids WHERE id").WithArgs(7).WillReturnRows(bidRow(7, 42, 2))
	expectProject(mock, projectRow(42, 1, fsm.StatusCompleted, 7), 42)
	mock.ExpectQuery("FROM users WHERE id").WithArgs(2).
		WillReturnRows(userRow(2, "seller@example.com", models.RoleSeller))
	mock.ExpectQuery("FROM users WHERE id").WithArgs(1).
		WillReturnRows(userRow(1, "buyer@example.com", models.RoleBuyer))

	if _, err := svc.CompleteProject(context.Background(), 1, 42); err != nil {
		t.Fatalf("CompleteProject: %v", err)
	}

	got := map[string]bool{
		waitForMail(t, mailer): true,
		waitForMail(t, mailer): true,
	}
	if !got["seller@example.com | Project completed"] {
		t.Fatalf("seller was not notified: %v", got)
	}
	if !got["buyer@example.com | Project completed"] {
		t.Fatalf("buyer was not notified: %v", got)
	}
}

func TestCancelProjectNotifiesBuyerAndSeller(t *testing.T) {
	svc, mock := newProjectService(t)
	mailer := &recordingMailer{sent: make(chan string, 2)}
	svc.Mailer = mailer
	mock.MatchExpectationsInOrder(false)

	expectProject(mock, projectRow(42, 1, fsm.StatusInProgress, 7), 42)
	mock.ExpectQuery("FROM bids WHERE id").WithArgs(7).WillReturnRows(bidRow(7, 42, 2))
	mock.ExpectExec("UPDATE projects SET status").
		WithArgs(fsm.StatusCancelled, 42, fsm.StatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectProject(mock, projectRow(42, 1, fsm.StatusCancelled, nil), 42)
	mock.ExpectQuery("FROM users WHERE id").WithArgs(2).
		WillReturnRows(userRow(2, "seller@example.com", models.RoleSeller))
	mock.ExpectQuery("FROM users WHERE id").WithArgs(1).
		WillReturnRows(userRow(1, "buyer@example.com", models.RoleBuyer))

	if _, err := svc.CancelProject(context.Background(), 1, 42); err != nil {
		t.Fatalf("CancelProject: %v", err)
	}

	got := map[string]bool{
		waitForMail(t, mailer): true,
		waitForMail(t, mailer): true,
	}
	if !got["seller@example.com | Project cancelled"] {
		t.Fatalf("seller was not notified: %v", got)
	}
	if !got["buyer@example.com | Project cancelled"] {
		t.Fatalf("buyer was not notified: %v", got)
	}
}
