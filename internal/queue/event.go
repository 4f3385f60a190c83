// Package queue defines the broker messages and the background consumer.
package queue

// ReviewSubmittedQueue is the durable queue review events travel on.
const ReviewSubmittedQueue = "review.submitted"

// ReviewSubmittedEvent is published after a review is stored. Consumers use
// it to refresh the dorm's precomputed rating summary.
type ReviewSubmittedEvent struct {
	ReviewID    string `json:"review_id"`
	DormID      string `json:"dorm_id"`
	UserID      uint64 `json:"user_id"`
	Rating      int    `json:"rating"`
	SubmittedAt string `json:"submitted_at"`
}
