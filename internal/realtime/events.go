package realtime

import (
	"time"

	"freelanceBack/internal/models"
)

// Event types pushed to connected clients.
const (
	EventConversationCreated = "new_conversation_created"
	EventMessageReceived     = "receive_message"
	EventMessageNotification = "new_message_notification"
	EventMessagesRead        = "messages_read"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ConversationCreatedPayload struct {
	Conversation models.Conversation `json:"conversation"`
	Participants []int               `json:"participants"`
}

type MessageReceivedPayload struct {
	ConversationID int            `json:"conversation_id"`
	Message        models.Message `json:"message"`
}

type MessageNotificationPayload struct {
	ConversationID int            `json:"conversation_id"`
	ReceiverID     int            `json:"receiver_id"`
	Message        models.Message `json:"message"`
}

type MessagesReadPayload struct {
	ConversationID int       `json:"conversation_id"`
	ReadByUserID   int       `json:"read_by_user_id"`
	Timestamp      time.Time `json:"timestamp"`
	MessagesMarked int       `json:"messages_marked"`
}

// Publisher is what the chat engine needs from the transport. Users are
// addressable directly, so conversation-creation and notification events go
// straight to their recipients; rooms only carry events for whoever has the
// conversation open.
type Publisher interface {
	PublishToUser(userID int, event Event)
	PublishToRoom(conversationID int, event Event)
}
