package model

import "time"

// Review is a single student review of a dorm. Reviews are append-only.
type Review struct {
	ID        string    `json:"id"`
	DormID    string    `json:"dorm_id"`
	UserID    uint64    `json:"user_id"`
	Author    string    `json:"author,omitempty"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewInput is what a signed-in user submits.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
