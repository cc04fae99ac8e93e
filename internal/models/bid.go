package models

import "time"

type Bid struct {
	ID           int       `json:"id"`
	ProjectID    int       `json:"project_id"`
	SellerID     int       `json:"seller_id"`
	Amount       float64   `json:"amount"`
	DurationDays int       `json:"duration_days"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`

	SellerName   string  `json:"seller_name,omitempty"`
	SellerRating float64 `json:"seller_rating,omitempty"`
}
