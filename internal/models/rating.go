package models

import "time"

type Rating struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	BuyerID   int       `json:"buyer_id"`
	SellerID  int       `json:"seller_id"`
	Value     int       `json:"value"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
