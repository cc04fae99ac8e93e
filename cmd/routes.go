package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"freelanceBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	buyerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleBuyer))
	sellerMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleSeller))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))

	// Projects
	mux.Post("/projects/:id/select-seller/:bid_id", buyerMiddleware.ThenFunc(app.projectHandler.SelectSeller))
	mux.Post("/projects/:id/unselect-seller", buyerMiddleware.ThenFunc(app.projectHandler.UnselectSeller))
	mux.Post("/projects/:id/complete", buyerMiddleware.ThenFunc(app.projectHandler.CompleteProject))
	mux.Post("/projects/:id/cancel", buyerMiddleware.ThenFunc(app.projectHandler.CancelProject))
	mux.Post("/projects/:id/upload", sellerMiddleware.ThenFunc(app.projectHandler.UploadDeliverable))
	mux.Post("/projects/:id/reupload", sellerMiddleware.ThenFunc(app.projectHandler.UploadDeliverable))
	mux.Post("/projects", buyerMiddleware.ThenFunc(app.projectHandler.CreateProject))
	mux.Get("/projects/buyer/:buyer_id", authMiddleware.ThenFunc(app.projectHandler.GetProjectsByBuyerID))
	mux.Get("/projects/selected-projects/seller/:seller_id", authMiddleware.ThenFunc(app.projectHandler.GetSelectedProjectsBySellerID))
	mux.Get("/projects/:id/deliverable", authMiddleware.ThenFunc(app.projectHandler.GetDeliverable))
	mux.Get("/projects/:id", authMiddleware.ThenFunc(app.projectHandler.GetProjectByID))
	mux.Get("/projects", standardMiddleware.ThenFunc(app.projectHandler.GetPendingProjects))
	mux.Add("PATCH", "/projects/:id/request-changes", buyerMiddleware.ThenFunc(app.projectHandler.RequestChanges))
	mux.Add("PATCH", "/projects/:id/progress", sellerMiddleware.ThenFunc(app.projectHandler.UpdateProgress))
	mux.Add("PATCH", "/projects/:id", buyerMiddleware.ThenFunc(app.projectHandler.UpdateDetails))

	// Bids
	mux.Post("/bids", sellerMiddleware.ThenFunc(app.bidHandler.PlaceBid))
	mux.Get("/bids/project/:project_id", authMiddleware.ThenFunc(app.bidHandler.GetBidsByProjectID))
	mux.Get("/bids/seller/:seller_id", authMiddleware.ThenFunc(app.bidHandler.GetBidsBySellerID))
	mux.Get("/bids/:id", authMiddleware.ThenFunc(app.bidHandler.GetBidByID))

	// Chat
	mux.Post("/chat/conversation", authMiddleware.ThenFunc(app.chatHandler.CreateConversation))
	mux.Post("/chat/message", authMiddleware.ThenFunc(app.chatHandler.SendMessage))
	mux.Get("/chat/messages/:conversation_id", authMiddleware.ThenFunc(app.chatHandler.GetMessages))
	mux.Get("/chat/conversations/:user_id", authMiddleware.ThenFunc(app.chatHandler.GetConversations))
	mux.Put("/chat/messages/read", authMiddleware.ThenFunc(app.chatHandler.MarkMessagesRead))
	mux.Get("/chat/unread/:user_id", authMiddleware.ThenFunc(app.chatHandler.GetUnreadCount))

	// Ratings
	mux.Post("/users", buyerMiddleware.ThenFunc(app.ratingHandler.RateSeller))
	mux.Get("/ratings/seller/:seller_id", authMiddleware.ThenFunc(app.ratingHandler.GetSellerRatings))

	// Push tokens
	mux.Post("/notify_tokens", authMiddleware.ThenFunc(app.pushHandler.RegisterToken))
	mux.Del("/notify_tokens/:token", authMiddleware.ThenFunc(app.pushHandler.DeleteToken))

	// Websocket
	mux.Get("/ws", authMiddleware.ThenFunc(app.serveWS))

	return mux
}
