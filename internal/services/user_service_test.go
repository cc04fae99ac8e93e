package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"freelanceBack/internal/models"
	"freelanceBack/internal/repositories"
)

func newUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &UserService{
		UserRepo:   &repositories.UserRepository{DB: db},
		SigningKey: "test-signing-key",
	}, mock
}

var userByEmailColumns = []string{"id", "name", "email", "password", "role", "rating", "created_at"}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(userByEmailColumns).
			AddRow(2, "Dana", "dana@example.com", "x", models.RoleSeller, 0.0, time.Now()))

	_, err := svc.SignUp(context.Background(), models.User{
		Name:     "Dana",
		Email:    "Dana@Example.com",
		Password: "secret",
		Role:     models.RoleSeller,
	})
	if !errors.Is(err, models.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.SignUp(context.Background(), models.User{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "secret",
		Role:     "admin",
	})
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpHashesPassword(t *testing.T) {
	svc, mock := newUserService(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(userByEmailColumns))

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Dana", "dana@example.com", sqlmock.AnyArg(), models.RoleSeller, "").
		WillReturnResult(sqlmock.NewResult(3, 1))

	user, err := svc.SignUp(context.Background(), models.User{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "secret",
		Role:     models.RoleSeller,
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.ID != 3 {
		t.Fatalf("expected user id 3, got %d", user.ID)
	}
	if user.Password != "" {
		t.Fatal("response must not carry the password")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc, mock := newUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(userByEmailColumns).
			AddRow(2, "Dana", "dana@example.com", string(hash), models.RoleSeller, 0.0, time.Now()))

	_, _, err = svc.SignIn(context.Background(), "dana@example.com", "wrong")
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInIssuesTokens(t *testing.T) {
	svc, mock := newUserService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(userByEmailColumns).
			AddRow(2, "Dana", "dana@example.com", string(hash), models.RoleSeller, 4.5, time.Now()))
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(2, models.RoleSeller, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tokens, user, err := svc.SignIn(context.Background(), "dana@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if user.ID != 2 || user.Password != "" {
		t.Fatalf("unexpected user %+v", user)
	}
}
