package services

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"freelanceBack/internal/models"
	"freelanceBack/internal/repositories"
	"freelanceBack/utils"
)

const (
	tokenTTL   = 120 * time.Minute
	sessionTTL = 24 * 30 * 2 * time.Hour
)

type UserService struct {
	UserRepo   *repositories.UserRepository
	SigningKey string
}

func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" || user.Name == "" {
		return models.User{}, models.ErrInvalidCredentials
	}
	if user.Role != models.RoleBuyer && user.Role != models.RoleSeller {
		return models.User{}, models.ErrInvalidCredentials
	}

	existing, err := s.UserRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return models.User{}, err
	}
	if existing.Email != "" {
		return models.User{}, models.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hashedPassword)

	id, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = id
	user.Password = ""
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, models.User, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.Tokens{}, models.User{}, err
	}
	if user.Email == "" {
		return models.Tokens{}, models.User{}, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.Tokens{}, models.User{}, models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		UserID: uint(user.ID),
		Role:   user.Role,
	})

	accessToken, err := token.SignedString([]byte(s.SigningKey))
	if err != nil {
		return models.Tokens{}, models.User{}, err
	}

	tokens, err := s.CreateSession(ctx, user, accessToken)
	if err != nil {
		return models.Tokens{}, models.User{}, err
	}

	user.Password = ""
	return tokens, user, nil
}

func (s *UserService) CreateSession(ctx context.Context, user models.User, accessToken string) (models.Tokens, error) {
	var (
		res models.Tokens
		err error
	)

	res.AccessToken = accessToken

	res.RefreshToken, err = utils.NewRefreshToken()
	if err != nil {
		res.RefreshToken = uuid.New().String()
	}

	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().Add(sessionTTL),
	}

	if err = s.UserRepo.CreateSession(ctx, session); err != nil {
		return res, err
	}

	return res, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}
