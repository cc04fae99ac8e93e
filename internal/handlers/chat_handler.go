package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"freelanceBack/internal/services"
)

type ChatHandler struct {
	ChatService *services.ChatService
}

// CreateConversation gets or creates the one conversation between the caller
// and the receiver. 200 for an existing conversation, 201 for a new one.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID int `json:"receiver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReceiverID <= 0 {
		http.Error(w, "Invalid receiver ID", http.StatusBadRequest)
		return
	}

	conversation, isNew, err := h.ChatService.GetOrCreateConversation(r.Context(), callerID(r), req.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, conversation)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID int    `json:"conversation_id"`
		Text           string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ConversationID <= 0 {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	message, err := h.ChatService.SendMessage(r.Context(), callerID(r), req.ConversationID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := strconv.Atoi(getParam(r, "conversation_id"))
	if err != nil || conversationID <= 0 {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.ChatService.GetMessages(r.Context(), callerID(r), conversationID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(getParam(r, "user_id"))
	if err != nil || userID <= 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if userID != callerID(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conversations, err := h.ChatService.GetConversationsByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (h *ChatHandler) MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID int `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ConversationID <= 0 {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	marked, err := h.ChatService.MarkMessagesRead(r.Context(), callerID(r), req.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages_marked": marked})
}

func (h *ChatHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(getParam(r, "user_id"))
	if err != nil || userID <= 0 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if userID != callerID(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	count, err := h.ChatService.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unread_count": count})
}
