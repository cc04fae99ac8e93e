package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"firebase.google.com/go/messaging"
)

// PushHandler manages device tokens and delivers FCM notifications. It
// doubles as the chat engine's PushSender; with a nil client every send is a
// no-op.
type PushHandler struct {
	Client   *messaging.Client
	DB       *sql.DB
	ErrorLog *log.Logger
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// RegisterToken stores a device token for the authenticated user. Saving the
// same token twice just refreshes the row.
func (h *PushHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query := `
        INSERT INTO notify_tokens (user_id, token)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)`
	if _, err := h.DB.ExecContext(r.Context(), query, callerID(r), req.Token); err != nil {
		h.ErrorLog.Printf("save push token: %v", err)
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PushHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := getParam(r, "token")
	if token == "" {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}

	query := `DELETE FROM notify_tokens WHERE user_id = ? AND token = ?`
	if _, err := h.DB.ExecContext(r.Context(), query, callerID(r), token); err != nil {
		h.ErrorLog.Printf("delete push token: %v", err)
		http.Error(w, "Failed to delete token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendToUser pushes a notification to every device registered for the user.
// Individual token failures are logged and skipped.
func (h *PushHandler) SendToUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	if h.Client == nil {
		return nil
	}

	tokens, err := h.tokensForUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-priority": "10",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{
							Title: title,
							Body:  body,
						},
						Sound: "default",
					},
				},
			},
		}
		if _, err := h.Client.Send(ctx, message); err != nil {
			h.ErrorLog.Printf("push to token of user %d: %v", userID, err)
		}
	}
	return nil
}

func (h *PushHandler) tokensForUser(ctx context.Context, userID int) ([]string, error) {
	rows, err := h.DB.QueryContext(ctx, `SELECT token FROM notify_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
