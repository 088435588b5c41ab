package entity

import "time"

// Review is an append-only product review. There is no edit or delete.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}
