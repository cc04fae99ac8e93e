package models

import (
	"time"
)

type Project struct {
	ID            int        `json:"id"`
	BuyerID       int        `json:"buyer_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Budget        float64    `json:"budget"`
	Currency      string     `json:"currency"`
	Deadline      time.Time  `json:"deadline"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	SelectedBidID *int       `json:"selected_bid_id,omitempty"`
	ReminderSent  bool       `json:"reminder_sent"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// ProjectUpdate carries the optional fields of a partial project edit.
// Nil means "leave unchanged".
type ProjectUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Deadline == nil
}
