package main

import (
	"database/sql"
	"log"
	"net/http"

	"firebase.google.com/go/messaging"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"freelanceBack/internal/config"
	"freelanceBack/internal/handlers"
	"freelanceBack/internal/realtime"
	"freelanceBack/internal/repositories"
	"freelanceBack/internal/services"
	"freelanceBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	signingKey string

	hub *realtime.Hub

	userRepo    *repositories.UserRepository
	projectRepo *repositories.ProjectRepository

	userService    *services.UserService
	projectService *services.ProjectService
	bidService     *services.BidService
	chatService    *services.ChatService

	userHandler    *handlers.UserHandler
	projectHandler *handlers.ProjectHandler
	bidHandler     *handlers.BidHandler
	chatHandler    *handlers.ChatHandler
	ratingHandler  *handlers.RatingHandler
	pushHandler    *handlers.PushHandler
}

func initializeApp(
	db *sql.DB,
	cfg config.Config,
	errorLog, infoLog *log.Logger,
	hub *realtime.Hub,
	redisClient *redis.Client,
	fcmClient *messaging.Client,
	storage *utils.FileStorage,
	mailer services.Notifier,
) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	projectRepo := repositories.ProjectRepository{DB: db}
	bidRepo := repositories.BidRepository{DB: db}
	deliverableRepo := repositories.DeliverableRepository{DB: db}
	ratingRepo := repositories.RatingRepository{DB: db}
	conversationRepo := repositories.ConversationRepository{DB: db}
	messageRepo := repositories.MessageRepository{DB: db}

	pushHandler := &handlers.PushHandler{Client: fcmClient, DB: db, ErrorLog: errorLog}

	// Services
	userService := &services.UserService{
		UserRepo:   &userRepo,
		SigningKey: cfg.JWT.SigningKey,
	}
	projectService := &services.ProjectService{
		ProjectRepo:     &projectRepo,
		BidRepo:         &bidRepo,
		DeliverableRepo: &deliverableRepo,
		RatingRepo:      &ratingRepo,
		UserRepo:        &userRepo,
		Mailer:          mailer,
		ErrorLog:        errorLog,
	}
	bidService := &services.BidService{
		BidRepo:     &bidRepo,
		ProjectRepo: &projectRepo,
	}
	chatService := &services.ChatService{
		ConversationRepo: &conversationRepo,
		MessageRepo:      &messageRepo,
		UserRepo:         &userRepo,
		Events:           hub,
		Redis:            redisClient,
		Push:             pushHandler,
		ErrorLog:         errorLog,
	}

	// Handlers
	userHandler := &handlers.UserHandler{UserService: userService}
	projectHandler := &handlers.ProjectHandler{ProjectService: projectService, Storage: storage}
	bidHandler := &handlers.BidHandler{BidService: bidService}
	chatHandler := &handlers.ChatHandler{ChatService: chatService}
	ratingHandler := &handlers.RatingHandler{ProjectService: projectService}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		db:             db,
		signingKey:     cfg.JWT.SigningKey,
		hub:            hub,
		userRepo:       &userRepo,
		projectRepo:    &projectRepo,
		userService:    userService,
		projectService: projectService,
		bidService:     bidService,
		chatService:    chatService,
		userHandler:    userHandler,
		projectHandler: projectHandler,
		bidHandler:     bidHandler,
		chatHandler:    chatHandler,
		ratingHandler:  ratingHandler,
		pushHandler:    pushHandler,
	}
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
