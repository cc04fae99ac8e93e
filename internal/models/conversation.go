package models

import "time"

// Conversation is a two-party channel. The pair (User1ID, User2ID) is unordered:
// lookups must check both orderings before creating a new row.
type Conversation struct {
	ID          int        `json:"id"`
	User1ID     int        `json:"user1_id"`
	User2ID     int        `json:"user2_id"`
	LastMessage string     `json:"last_message,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant reports whether userID is one of the two parties.
func (c Conversation) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ConversationSummary is the list-view shape: the conversation annotated with
// the other participant and its most recent message.
type ConversationSummary struct {
	Conversation
	OtherUser     User     `json:"other_user"`
	RecentMessage *Message `json:"recent_message,omitempty"`
	MessageCount  int      `json:"message_count"`
}
