package models

import "time"

type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversation_id"`
	SenderID       int       `json:"sender_id"`
	Text           string    `json:"text"`
	Seen           bool      `json:"seen"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessagePage is a chronological slice of a conversation plus pagination metadata.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	TotalCount int       `json:"total_count"`
	HasMore    bool      `json:"has_more"`
}
