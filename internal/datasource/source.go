// Package datasource is the boundary between the catalog and wherever dorm
// records live. Records cross it as model.RawRecord and are normalized by the
// caller.
package datasource

import (
	"context"
	"errors"

	"github.com/iliyamo/dorm-finder/internal/model"
	"github.com/iliyamo/dorm-finder/internal/review"
)

var (
	// ErrNotFound is returned when a dorm does not exist.
	ErrNotFound = errors.New("dorm not found")
	// ErrNotAuthenticated is returned when a write needs a user and has none.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError carries a rejection reason the data source reported. Its
// message is shown to the user as is.
type ValidationError = review.ValidationError

// Query narrows a listing fetch. Text is matched token by token; the source
// may over-fetch since the search engine filters again.
type Query struct {
	Text  string
	Limit int
}

// Source is the read/write surface the catalog needs.
type Source interface {
	FetchListings(ctx context.Context, q Query) ([]model.RawRecord, error)
	// FetchListingDetail returns the full record including reviews, or
	// ErrNotFound.
	FetchListingDetail(ctx context.Context, id string) (model.RawRecord, error)
	FetchReviews(ctx context.Context, dormID string) ([]model.Review, error)
	SubmitReview(ctx context.Context, dormID string, userID uint64, in model.ReviewInput) (model.Review, error)
}

// Admin holds the maintenance writes used by the rating consumer and the
// admin routes.
type Admin interface {
	UpdateRatingSummary(ctx context.Context, dormID string, avg float64, count int) error
	SetVerified(ctx context.Context, dormID string, verified bool) error
}

// Store is a Source that also supports the admin writes.
type Store interface {
	Source
	Admin
}
