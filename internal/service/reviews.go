package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/dorm-finder/internal/datasource"
	"github.com/iliyamo/dorm-finder/internal/model"
	q "github.com/iliyamo/dorm-finder/internal/queue"
	"github.com/iliyamo/dorm-finder/internal/review"
)

// Reviews lists and accepts dorm reviews.
type Reviews struct {
	src    datasource.Source
	pub    Publisher
	logger *log.Logger
}

func NewReviews(src datasource.Source, pub Publisher, logger *log.Logger) *Reviews {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Reviews{src: src, pub: pub, logger: logger}
}

// ReviewPage is a summary over all reviews plus one page of them.
type ReviewPage struct {
	Summary review.Summary            `json:"summary"`
	Page    review.Page[model.Review] `json:"page"`
}

// List returns the summary and the requested page; out-of-range pages clamp.
func (s *Reviews) List(ctx context.Context, dormID string, page, pageSize int) (ReviewPage, error) {
	all, err := s.src.FetchReviews(ctx, dormID)
	if err != nil {
		return ReviewPage{}, err
	}
	return ReviewPage{
		Summary: review.SummarizeReviews(all),
		Page:    review.Paginate(all, page, pageSize),
	}, nil
}

// Submit checks the caller, validates the input, stores the review and
// announces it. A failed announcement is logged, not returned.
func (s *Reviews) Submit(ctx context.Context, dormID string, userID uint64, in model.ReviewInput) (model.Review, error) {
	if userID == 0 {
		return model.Review{}, datasource.ErrNotAuthenticated
	}
	if err := review.ValidateInput(in.Rating, in.Comment); err != nil {
		return model.Review{}, err
	}
	rv, err := s.src.SubmitReview(ctx, dormID, userID, in)
	if err != nil {
		return model.Review{}, err
	}
	ev := q.ReviewSubmittedEvent{
		ReviewID:    rv.ID,
		DormID:      dormID,
		UserID:      userID,
		Rating:      in.Rating,
		SubmittedAt: rv.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.pub.PublishReviewSubmitted(ctx, ev); err != nil {
		s.logger.Warnf("[reviews] publish review %s: %v", rv.ID, err)
	}
	return rv, nil
}

// RatingRefresher recomputes a dorm's stored rating summary from its
// reviews. It is the handler of the review.submitted consumer.
type RatingRefresher struct {
	Source datasource.Source
	Admin  datasource.Admin
	Logger *log.Logger
}

// Handle recomputes the summary for ev.DormID.
func (r *RatingRefresher) Handle(ctx context.Context, ev q.ReviewSubmittedEvent) error {
	all, err := r.Source.FetchReviews(ctx, ev.DormID)
	if err != nil {
		return err
	}
	sum := review.SummarizeReviews(all)
	if err := r.Admin.UpdateRatingSummary(ctx, ev.DormID, sum.Average, sum.Total); err != nil {
		return err
	}
	if r.Logger != nil {
		r.Logger.Infof("[reviews] dorm %s rating now %.1f over %d reviews", ev.DormID, sum.Average, sum.Total)
	}
	return nil
}
